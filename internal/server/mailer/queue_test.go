package mailer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/avasilkov/keyvault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Job
	err   error
	slow  time.Duration
	woken chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, job Job) error {
	if f.slow > 0 {
		time.Sleep(f.slow)
	}
	f.mu.Lock()
	f.sent = append(f.sent, job)
	f.mu.Unlock()
	if f.woken != nil {
		f.woken <- struct{}{}
	}
	return f.err
}

func (f *fakeSender) sentJobs() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Job(nil), f.sent...)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestQueue_DeliversEnqueuedJobs(t *testing.T) {
	sender := &fakeSender{woken: make(chan struct{}, 10)}
	q := NewQueue(10, sender, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	job := Job{Recipient: "alice@example.com", Subject: "Key Expiration Notification", Body: "body"}
	require.True(t, q.Enqueue(ctx, job))

	select {
	case <-sender.woken:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not delivered in time")
	}

	sent := sender.sentJobs()
	require.Len(t, sent, 1)
	assert.Equal(t, job, sent[0])
}

func TestQueue_EnqueueNeverBlocksWhenFull(t *testing.T) {
	// No consumer running: the channel fills up and stays full.
	sender := &fakeSender{}
	q := NewQueue(2, sender, testLogger())
	ctx := context.Background()

	assert.True(t, q.Enqueue(ctx, Job{Recipient: "a@example.com"}))
	assert.True(t, q.Enqueue(ctx, Job{Recipient: "b@example.com"}))

	done := make(chan bool, 1)
	go func() {
		done <- q.Enqueue(ctx, Job{Recipient: "c@example.com"})
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "saturated queue must drop, not block")
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	assert.Equal(t, 2, q.Len())
}

func TestQueue_ConsumerSurvivesDeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down"), woken: make(chan struct{}, 10)}
	q := NewQueue(10, sender, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	require.True(t, q.Enqueue(ctx, Job{Recipient: "a@example.com", Subject: "one"}))
	require.True(t, q.Enqueue(ctx, Job{Recipient: "b@example.com", Subject: "two"}))

	for i := 0; i < 2; i++ {
		select {
		case <-sender.woken:
		case <-time.After(2 * time.Second):
			t.Fatalf("job %d was not attempted; consumer died on delivery error", i)
		}
	}

	assert.Len(t, sender.sentJobs(), 2)
}

func TestQueue_RunStopsOnContextCancel(t *testing.T) {
	sender := &fakeSender{}
	q := NewQueue(1, sender, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop on context cancellation")
	}
}
