package coordinator

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher blocks each fetch until release is closed (or ctx ends).
type fakeFetcher struct {
	calls   atomic.Int32
	started chan string
	release chan struct{}
	err     error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{started: make(chan string, 16), release: make(chan struct{})}
}

func (f *fakeFetcher) Fetch(ctx context.Context, obj *models.Object, report models.ProgressFunc) (fetcher.Result, error) {
	f.calls.Add(1)
	f.started <- obj.ContentHash
	report(models.Progress{State: models.StatePreparing, Channel: models.ChannelLAN})
	select {
	case <-f.release:
	case <-ctx.Done():
		return fetcher.Result{}, common.ErrCancelled
	}
	if f.err != nil {
		return fetcher.Result{}, f.err
	}
	report(models.Transferring(models.ChannelLAN, 50, 100))
	report(models.Transferring(models.ChannelLAN, 100, 100))
	return fetcher.Result{Path: "/cache/" + obj.ContentHash + ".jpg", Channel: models.ChannelLAN}, nil
}

func obj(hash string) *models.Object {
	return &models.Object{ID: "id-" + hash, ContentHash: hash, MIME: "image/jpeg"}
}

func newCoordinator(t *testing.T, f Fetcher, opts ...Option) *Coordinator {
	c := New(f, opts...)
	c.Start()
	t.Cleanup(c.Close)
	return c
}

func await(t *testing.T, task *Task) (Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := task.Await(ctx)
	require.False(t, errors.Is(err, context.DeadlineExceeded), "task did not resolve")
	return res, err
}

func TestStartOrFetch_Deduplicates(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	var wg sync.WaitGroup
	tasks := make([]*Task, 8)
	for i := range tasks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task, err := c.StartOrFetch(obj("h1"))
			assert.NoError(t, err)
			tasks[i] = task
		}(i)
	}
	wg.Wait()
	for _, task := range tasks[1:] {
		assert.Same(t, tasks[0], task)
	}

	<-f.started
	close(f.release)

	for _, task := range tasks {
		res, err := await(t, task)
		require.NoError(t, err)
		assert.Equal(t, "/cache/h1.jpg", res.Path)
		assert.Equal(t, models.ChannelLAN, res.Channel)
	}
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestTerminalTaskLeavesRegistry(t *testing.T) {
	f := newFakeFetcher()
	f.err = common.ErrAllChannelsFailed
	close(f.release)
	c := newCoordinator(t, f)

	first, err := c.StartOrFetch(obj("h1"))
	require.NoError(t, err)
	_, err = await(t, first)
	require.ErrorIs(t, err, common.ErrAllChannelsFailed)

	_, ok := c.Lookup("h1")
	assert.False(t, ok)

	second, err := c.StartOrFetch(obj("h1"))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	_, err = await(t, second)
	require.ErrorIs(t, err, common.ErrAllChannelsFailed)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestTasksRunSerially(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	a, _ := c.StartOrFetch(obj("a"))
	b, _ := c.StartOrFetch(obj("b"))
	assert.Equal(t, "a", <-f.started)

	select {
	case h := <-f.started:
		t.Fatalf("second fetch %s started while the first was running", h)
	case <-time.After(50 * time.Millisecond):
	}

	close(f.release)
	_, err := await(t, a)
	require.NoError(t, err)
	assert.Equal(t, "b", <-f.started)
	_, err = await(t, b)
	require.NoError(t, err)
	assert.Len(t, c.Tasks(), 0)
}

func TestCancel_RunningTask(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	task, _ := c.StartOrFetch(obj("h1"))
	<-f.started
	task.Cancel()

	_, err := await(t, task)
	require.Error(t, err)
	assert.True(t, common.IsCancelled(err))
	last := task.Last()
	assert.Equal(t, models.StateComplete, last.State)
	assert.Equal(t, models.OutcomeCancelled, last.Outcome)
}

func TestCancel_QueuedTaskResolvesImmediately(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	running, _ := c.StartOrFetch(obj("a"))
	queued, _ := c.StartOrFetch(obj("b"))
	<-f.started

	queued.Cancel()
	_, err := await(t, queued)
	assert.True(t, common.IsCancelled(err))
	_, ok := c.Lookup("b")
	assert.False(t, ok)

	close(f.release)
	_, err = await(t, running)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestObservers_ReplayAndSingleTerminal(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	task, _ := c.StartOrFetch(obj("h1"))
	<-f.started

	var mu sync.Mutex
	var early, late []models.Progress
	sub := task.Register(func(p models.Progress) {
		mu.Lock()
		early = append(early, p)
		mu.Unlock()
	})
	close(f.release)
	_, err := await(t, task)
	require.NoError(t, err)

	task.Register(func(p models.Progress) { late = append(late, p) })
	task.Unregister(sub)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, early)
	terminals := 0
	lastPct := -1
	for _, p := range early {
		if p.Terminal() {
			terminals++
		}
		if p.PercentKnown {
			assert.GreaterOrEqual(t, p.Percent, lastPct)
			lastPct = p.Percent
		}
	}
	assert.Equal(t, 1, terminals)
	assert.True(t, early[len(early)-1].Terminal())
	assert.Equal(t, models.OutcomeSuccess, early[len(early)-1].Outcome)

	require.Len(t, late, 1)
	assert.Equal(t, early[len(early)-1], late[0])
}

func TestWatch_EndsWithTerminal(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f)

	task, _ := c.StartOrFetch(obj("h1"))
	events := task.Watch(context.Background())
	<-f.started
	close(f.release)

	var got []models.Progress
	for p := range events {
		got = append(got, p)
	}
	require.NotEmpty(t, got)
	assert.Equal(t, models.StateComplete, got[len(got)-1].State)
}

func TestBus_PublishesProgressAndContentReady(t *testing.T) {
	bus := evbus.New()
	var mu sync.Mutex
	var states []string
	ready := make(chan string, 1)
	require.NoError(t, bus.Subscribe(TopicProgress, func(e Event) {
		mu.Lock()
		states = append(states, e.State)
		mu.Unlock()
	}))
	require.NoError(t, bus.Subscribe(TopicContentReady, func(o *models.Object, path string) {
		ready <- path
	}))

	f := newFakeFetcher()
	close(f.release)
	c := newCoordinator(t, f, WithBus(bus))

	task, _ := c.StartOrFetch(obj("h1"))
	_, err := await(t, task)
	require.NoError(t, err)

	select {
	case p := <-ready:
		assert.Equal(t, "/cache/h1.jpg", p)
	case <-time.After(time.Second):
		t.Fatal("content-ready not published")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "PENDING", states[0])
	assert.Equal(t, "COMPLETE", states[len(states)-1])
}

func TestClose_CancelsEverything(t *testing.T) {
	f := newFakeFetcher()
	c := New(f)
	c.Start()

	running, _ := c.StartOrFetch(obj("a"))
	queued, _ := c.StartOrFetch(obj("b"))
	<-f.started
	c.Close()

	_, err := await(t, running)
	assert.True(t, common.IsCancelled(err))
	_, err = await(t, queued)
	assert.True(t, common.IsCancelled(err))

	_, err = c.StartOrFetch(obj("c"))
	assert.ErrorIs(t, err, ErrClosed)
}

// countingChannel fails every attempt and counts them.
type countingChannel struct{ calls atomic.Int32 }

func (c *countingChannel) Kind() models.Channel            { return models.ChannelLAN }
func (c *countingChannel) Applicable(*models.Object) bool { return true }
func (c *countingChannel) Attempt(context.Context, *models.Object, *filex.Partial, models.ProgressFunc) (int64, error) {
	c.calls.Add(1)
	return 0, common.ErrChannelUnavailable
}

func TestCacheHit_NoChannelAttempt(t *testing.T) {
	dir := t.TempDir()
	ch := &countingChannel{}
	f := fetcher.New(dir, []fetcher.Channel{ch})
	c := newCoordinator(t, f)

	o := obj("h1")
	require.NoError(t, os.WriteFile(f.CachePath(o), []byte("x"), 0o600))

	task, _ := c.StartOrFetch(o)
	res, err := await(t, task)
	require.NoError(t, err)
	assert.Equal(t, f.CachePath(o), res.Path)
	assert.Equal(t, models.ChannelNone, res.Channel)
	assert.Zero(t, ch.calls.Load())
}

func TestCancel_LeavesNoCacheFile(t *testing.T) {
	dir := t.TempDir()
	block := make(chan struct{})
	f := fetcher.New(dir, []fetcher.Channel{blockingChannel(block)})
	c := newCoordinator(t, f)

	o := obj("h1")
	task, _ := c.StartOrFetch(o)
	<-block
	task.Cancel()

	_, err := await(t, task)
	assert.True(t, common.IsCancelled(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// blockingChannel writes some bytes, signals, then waits for cancellation.
type blockingChannel chan struct{}

func (b blockingChannel) Kind() models.Channel            { return models.ChannelRelay }
func (b blockingChannel) Applicable(*models.Object) bool { return true }
func (b blockingChannel) Attempt(ctx context.Context, _ *models.Object, dst *filex.Partial, _ models.ProgressFunc) (int64, error) {
	n, _ := dst.Write([]byte("partial"))
	close(b)
	<-ctx.Done()
	return int64(n), common.ErrCancelled
}
