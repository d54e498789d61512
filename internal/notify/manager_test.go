package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (w *fakeWorker) Start(ctx context.Context) error {
	*w.events = append(*w.events, "start "+w.name)
	return w.startErr
}

func (w *fakeWorker) Stop() {
	*w.events = append(*w.events, "stop "+w.name)
}

func (w *fakeWorker) Name() string { return w.name }

func TestWorkerManager_StartsInOrderStopsInReverse(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())
	m.Register(&fakeWorker{name: "a", events: &events})
	m.Register(&fakeWorker{name: "b", events: &events})

	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestWorkerManager_StartAllAbortsOnFailure(t *testing.T) {
	var events []string
	m := NewWorkerManager(zap.NewNop())
	m.Register(&fakeWorker{name: "a", events: &events})
	m.Register(&fakeWorker{name: "b", startErr: errors.New("listen failed"), events: &events})
	m.Register(&fakeWorker{name: "c", events: &events})

	err := m.StartAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"start a", "start b"}, events, "workers after the failure are not started")
}
