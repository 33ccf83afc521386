package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"workflowsvc/pkg/errors"
)

type recordingTracker struct {
	errs []error
	tags []map[string]string
}

func (r *recordingTracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (r *recordingTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (r *recordingTracker) Flush(context.Context) error { return nil }

func TestWithRequestIDStampsEveryLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{SugaredLogger: zap.New(core).Sugar()}

	ctx := WithRequestID(context.Background(), base, "req-123")
	FromContext(ctx).Infow("stage started", "stage", "resolve")
	FromContext(ctx).Info("stage done")

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
	}
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestRequestIDsAreIsolatedPerContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{SugaredLogger: zap.New(core).Sugar()}

	first := WithRequestID(context.Background(), base, "a")
	second := WithRequestID(context.Background(), base, "b")

	FromContext(second).Info("second")
	FromContext(first).Info("first")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "a", entries[1].ContextMap()["request_id"])
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}

func TestErrorWithContextTagsRequestID(t *testing.T) {
	tracker := &recordingTracker{}
	l := &Logger{SugaredLogger: zap.NewNop().Sugar(), errorTracker: tracker}

	ctx := WithRequestID(context.Background(), l, "req-9")
	FromContext(ctx).ErrorWithContext(ctx, errors.ErrProvider, map[string]string{"stage": "analyze"})

	require.Len(t, tracker.errs, 1)
	assert.Equal(t, "req-9", tracker.tags[0]["request_id"])
	assert.Equal(t, "analyze", tracker.tags[0]["stage"])
}

func TestContextWithKeepsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{SugaredLogger: zap.New(core).Sugar()}

	ctx := WithRequestID(context.Background(), base, "req-1")
	ctx = ContextWith(ctx, "video_id", "dQw4w9WgXcQ")
	FromContext(ctx).Info("fetched")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "dQw4w9WgXcQ", fields["video_id"])
}

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	prev := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalLogger = prev
		globalMu.Unlock()
	})
}

func TestGetIsSafeBeforeInit(t *testing.T) {
	resetGlobal(t)

	const workers = 16
	got := make([]*Logger, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, got[0])
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestSetErrorTrackerReplacesGlobal(t *testing.T) {
	resetGlobal(t)
	require.NoError(t, Init("info", "test"))
	before := Get()

	tracker := &recordingTracker{}
	SetErrorTracker(tracker)

	after := Get()
	assert.NotSame(t, before, after)
	assert.Nil(t, before.errorTracker)
	assert.Equal(t, tracker, after.errorTracker)
}
