package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/expensedesk/expensectl/internal/notify"
	"github.com/expensedesk/expensectl/internal/storage"
	"go.uber.org/zap"
)

// Exporter requests a backend-generated report blob and saves it as a
// local download. An empty blob never becomes a file on disk; it surfaces
// as an error toast instead.
type Exporter struct {
	exportAPI *api.ExportAPI
	downloads *storage.DownloadStore
	toasts    *notify.Store
	logger    *zap.Logger
}

// NewExporter creates an exporter writing into the given download store.
func NewExporter(exportAPI *api.ExportAPI, downloads *storage.DownloadStore, toasts *notify.Store, logger *zap.Logger) *Exporter {
	return &Exporter{
		exportAPI: exportAPI,
		downloads: downloads,
		toasts:    toasts,
		logger:    logger,
	}
}

// Export downloads the report in the given format (pdf or xlsx) and
// returns the path of the saved file.
func (e *Exporter) Export(ctx context.Context, format string, all bool) (string, error) {
	blob, err := e.exportAPI.Export(ctx, format, all)
	if err != nil {
		if errors.Is(err, api.ErrEmptyExport) {
			e.toasts.AddNotification("Export produced an empty file", entity.ToastError)
		} else {
			e.toasts.AddNotification(api.UserMessage(err), entity.ToastError)
		}
		return "", err
	}

	name := fmt.Sprintf("expenses-%s.%s", time.Now().Format("2006-01-02"), format)
	path, err := e.downloads.SaveFile(name, blob)
	if err != nil {
		e.toasts.AddNotification("Failed to save exported report", entity.ToastError)
		return "", err
	}

	e.toasts.AddNotification(
		fmt.Sprintf("Report exported successfully as %s", format), entity.ToastSuccess)
	e.logger.Info("Report exported",
		zap.String("format", format),
		zap.Bool("all", all),
		zap.String("path", path))
	return path, nil
}
