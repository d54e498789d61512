package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/expensedesk/expensectl/internal/notify"
	"github.com/expensedesk/expensectl/internal/storage"
)

func newTestExporter(t *testing.T, handler http.Handler) (*Exporter, *notify.Store, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger)
	toasts := notify.NewStore(api.NewNotificationAPI(client, logger), fakeSession{}, logger)

	dir := t.TempDir()
	downloads := storage.NewDownloadStore(dir, logger)
	return NewExporter(api.NewExportAPI(client, logger), downloads, toasts, logger), toasts, dir
}

func TestExporter_SavesBlobAndToasts(t *testing.T) {
	exporter, toasts, _ := newTestExporter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/expenses/export/pdf", r.URL.Path)
		w.Write([]byte("%PDF-1.4 report"))
	}))

	path, err := exporter.Export(context.Background(), "pdf", false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 report", string(content))

	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, "Report exported successfully as pdf", toasts.Toasts()[0].Message)
	assert.Equal(t, entity.ToastSuccess, toasts.Toasts()[0].Type)
}

func TestExporter_EmptyBlobNeverBecomesAFile(t *testing.T) {
	exporter, toasts, dir := newTestExporter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, err := exporter.Export(context.Background(), "xlsx", false)
	require.ErrorIs(t, err, api.ErrEmptyExport)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file is written for an empty export")

	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, "Export produced an empty file", toasts.Toasts()[0].Message)
	assert.Equal(t, entity.ToastError, toasts.Toasts()[0].Type)
}

func TestExporter_BackendErrorSurfacesMessage(t *testing.T) {
	exporter, toasts, _ := newTestExporter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Export requires finance role"}`))
	}))

	_, err := exporter.Export(context.Background(), "pdf", true)
	require.Error(t, err)
	require.Len(t, toasts.Toasts(), 1)
	assert.Equal(t, "Export requires finance role", toasts.Toasts()[0].Message)
}
