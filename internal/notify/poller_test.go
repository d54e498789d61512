package notify

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoller_PollsImmediatelyAndOnInterval(t *testing.T) {
	var polls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Write([]byte(`[]`))
	})
	store := newTestNotifyStore(t, handler, true)

	poller := NewPoller(store, zap.NewNop())
	poller.SetInterval(20 * time.Millisecond)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	require.Eventually(t, func() bool {
		return polls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "expected an immediate poll followed by interval ticks")
}

func TestPoller_DoubleStartFails(t *testing.T) {
	store := newTestNotifyStore(t, nil, false)
	poller := NewPoller(store, zap.NewNop())

	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()
	assert.Error(t, poller.Start(context.Background()))
}

func TestPoller_StopHaltsPolling(t *testing.T) {
	var polls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Write([]byte(`[]`))
	})
	store := newTestNotifyStore(t, handler, true)

	poller := NewPoller(store, zap.NewNop())
	poller.SetInterval(10 * time.Millisecond)
	require.NoError(t, poller.Start(context.Background()))

	require.Eventually(t, func() bool { return polls.Load() >= 1 }, time.Second, time.Millisecond)
	poller.Stop()

	settled := polls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, polls.Load(), settled+1, "no polling after Stop")

	// Stopping twice is harmless.
	poller.Stop()
}

func TestPoller_SkipsTickWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	var polls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		<-release
		w.Write([]byte(`[]`))
	})
	store := newTestNotifyStore(t, handler, true)

	poller := NewPoller(store, zap.NewNop())
	poller.SetInterval(10 * time.Millisecond)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	// Several intervals elapse while the first request hangs; throttling
	// keeps it the only one.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), polls.Load())
	close(release)
}

func TestPoller_Name(t *testing.T) {
	poller := NewPoller(newTestNotifyStore(t, nil, false), zap.NewNop())
	assert.Equal(t, "NotificationPoller", poller.Name())
}
