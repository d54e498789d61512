package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ExportAPI fetches backend-generated report blobs (PDF or spreadsheet)
type ExportAPI struct {
	client *Client
	logger *zap.Logger
}

// NewExportAPI creates a new export API handler
func NewExportAPI(client *Client, logger *zap.Logger) *ExportAPI {
	return &ExportAPI{client: client, logger: logger}
}

// Export downloads the caller's role-scoped report in the given format
// (pdf or xlsx). When all is true the organisation-wide export endpoint is
// used instead. An empty 2xx body yields ErrEmptyExport so a zero-byte
// file is never written.
func (a *ExportAPI) Export(ctx context.Context, format string, all bool) ([]byte, error) {
	path := "/api/expenses/export/" + format
	if all {
		path = "/api/expenses/export-all/" + format
	}

	data, err := a.client.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		a.logger.Error("Export returned empty blob",
			zap.String("format", format),
			zap.Bool("all", all))
		return nil, fmt.Errorf("export %s: %w", format, ErrEmptyExport)
	}
	return data, nil
}
