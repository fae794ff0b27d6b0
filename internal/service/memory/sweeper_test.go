package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedMessages wraps fakeMessages for tests that touch the repo from
// another goroutine.
type lockedMessages struct {
	mu sync.Mutex
	fakeMessages
}

func (l *lockedMessages) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeMessages.PurgeExpired(ctx, now)
}

func (l *lockedMessages) remaining() []core.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func TestSweeper_PurgesExpired(t *testing.T) {
	now := time.Now().UTC()
	repo := &lockedMessages{}
	repo.msgs = []core.Message{
		{ID: "stale", UserID: "u1", ExpiresAt: now.Add(-time.Hour)},
		{ID: "fresh", UserID: "u1", ExpiresAt: now.Add(time.Hour)},
	}

	sweeper := NewSweeper(repo)
	sweeper.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return len(repo.remaining()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	left := repo.remaining()
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].ID)
	require.NoError(t, sweeper.Shutdown(context.Background()))
}
