package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// NotificationAPI handles the server-backed bell notification list
type NotificationAPI struct {
	client *Client
	logger *zap.Logger
}

// NewNotificationAPI creates a new notification API handler
func NewNotificationAPI(client *Client, logger *zap.Logger) *NotificationAPI {
	return &NotificationAPI{client: client, logger: logger}
}

// List returns the server's current notification list.
func (a *NotificationAPI) List(ctx context.Context) ([]entity.Notification, error) {
	var notifications []entity.Notification
	if err := a.client.getJSON(ctx, "/api/notifications", &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one notification as read.
func (a *NotificationAPI) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/notifications/%d/read", id)
	return a.client.sendJSON(ctx, http.MethodPut, path, nil, nil)
}

// MarkAllRead marks every notification as read.
func (a *NotificationAPI) MarkAllRead(ctx context.Context) error {
	return a.client.sendJSON(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil)
}

// Delete removes one notification.
func (a *NotificationAPI) Delete(ctx context.Context, id int64) error {
	return a.client.delete(ctx, fmt.Sprintf("/api/notifications/%d", id))
}

// Clear removes every notification.
func (a *NotificationAPI) Clear(ctx context.Context) error {
	return a.client.delete(ctx, "/api/notifications")
}
