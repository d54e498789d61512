package notify

import (
	"context"
	"sync"
	"time"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// ToastTimeout is how long a client-local toast stays visible.
const ToastTimeout = 3 * time.Second

// Authenticator is the slice of the session store the notification store
// needs.
type Authenticator interface {
	IsAuthenticated() bool
}

// Store holds the two notification concepts: ephemeral client-generated
// toasts that auto-expire, and the server-backed bell list that is fetched
// and polled. The bell list is a disposable cache; the backend mutation
// always runs first and a failed call leaves the cache untouched.
type Store struct {
	notificationAPI *api.NotificationAPI
	session         Authenticator
	logger          *zap.Logger

	// injectable clock for tests
	now      func() time.Time
	schedule func(d time.Duration, fn func()) (cancel func())

	mu          sync.Mutex
	bell        []entity.Notification
	toasts      []entity.Toast
	nextToastID int64
}

// NewStore creates a notification store using the wall clock.
func NewStore(notificationAPI *api.NotificationAPI, session Authenticator, logger *zap.Logger) *Store {
	return &Store{
		notificationAPI: notificationAPI,
		session:         session,
		logger:          logger,
		now:             time.Now,
		schedule: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
	}
}

// SetClock overrides the clock and timer scheduling, for tests.
func (s *Store) SetClock(now func() time.Time, schedule func(time.Duration, func()) func()) {
	s.now = now
	s.schedule = schedule
}

// FetchNotifications replaces the cached bell list with the server's
// current list. It is a no-op when unauthenticated.
func (s *Store) FetchNotifications(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return nil
	}

	notifications, err := s.notificationAPI.List(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch notifications", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.bell = notifications
	s.mu.Unlock()
	return nil
}

// Notifications returns a copy of the cached bell list.
func (s *Store) Notifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Notification, len(s.bell))
	copy(out, s.bell)
	return out
}

// UnreadCount returns how many cached notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.bell {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// AddNotification appends a client-local toast with a generated id and a
// wall-clock time label, and schedules its removal. This never touches the
// backend.
func (s *Store) AddNotification(message, toastType string) entity.Toast {
	s.mu.Lock()
	s.nextToastID++
	toast := entity.Toast{
		ID:      s.nextToastID,
		Message: message,
		Type:    toastType,
		Time:    s.now().Format("15:04:05"),
	}
	s.toasts = append(s.toasts, toast)
	s.mu.Unlock()

	s.schedule(ToastTimeout, func() {
		s.removeToast(toast.ID)
	})
	return toast
}

// Toasts returns a copy of the currently visible toasts.
func (s *Store) Toasts() []entity.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

func (s *Store) removeToast(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
}

// MarkAsRead marks one notification read on the backend, then mirrors the
// change in the cache.
func (s *Store) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.notificationAPI.MarkRead(ctx, id); err != nil {
		s.logger.Error("Failed to mark notification as read",
			zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	for i := range s.bell {
		if s.bell[i].ID == id {
			s.bell[i].IsRead = true
		}
	}
	s.mu.Unlock()
	return nil
}

// MarkAllAsRead marks every notification read on the backend, then the
// cache.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	if err := s.notificationAPI.MarkAllRead(ctx); err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Error(err))
		return err
	}

	s.mu.Lock()
	for i := range s.bell {
		s.bell[i].IsRead = true
	}
	s.mu.Unlock()
	return nil
}

// RemoveNotification deletes one notification on the backend, then drops
// it from the cache.
func (s *Store) RemoveNotification(ctx context.Context, id int64) error {
	if err := s.notificationAPI.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to remove notification",
			zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	kept := s.bell[:0]
	for _, n := range s.bell {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.bell = kept
	s.mu.Unlock()
	return nil
}

// ClearNotifications deletes every notification on the backend, then
// empties the cache.
func (s *Store) ClearNotifications(ctx context.Context) error {
	if err := s.notificationAPI.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear notifications", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.bell = nil
	s.mu.Unlock()
	return nil
}
