package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/logging"
)

// Event bus topics.
const (
	// TopicProgress carries an Event for every progress update of every
	// task.
	TopicProgress = "corral:progress"

	// TopicContentReady carries (*models.Object, path string) after a
	// successful fetch; the media index refreshes on it.
	TopicContentReady = "corral:content-ready"
)

// Event is the payload of TopicProgress.
type Event struct {
	TaskID    string          `json:"task_id"`
	ContentID string          `json:"content_id"`
	ObjectID  string          `json:"object_id"`
	Progress  models.Progress `json:"-"`
	State     string          `json:"state"`
	Channel   string          `json:"channel"`
	Percent   *int            `json:"percent,omitempty"`
	Outcome   string          `json:"outcome,omitempty"`
}

// NewEvent fills the JSON view of p.
func NewEvent(t *Task, p models.Progress) Event {
	e := Event{
		TaskID:    t.ID,
		ContentID: t.ContentID,
		ObjectID:  t.Object.ID,
		Progress:  p,
		State:     p.State.String(),
		Channel:   p.Channel.String(),
		Outcome:   p.Outcome.String(),
	}
	if p.PercentKnown {
		pct := p.Percent
		e.Percent = &pct
	}
	return e
}

// Fetcher resolves one object; *fetcher.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, obj *models.Object, report models.ProgressFunc) (fetcher.Result, error)
}

// Gauge tracks the number of live tasks; *metrics.Metrics implements it.
type Gauge interface {
	TaskStarted()
	TaskFinished()
}

type nopGauge struct{}

func (nopGauge) TaskStarted()  {}
func (nopGauge) TaskFinished() {}

var ErrClosed = errors.New("coordinator closed")

// Coordinator deduplicates fetch requests per content id and runs them on
// one worker.
type Coordinator struct {
	fetcher Fetcher
	bus     evbus.Bus
	gauge   Gauge
	logger  logging.Logger

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	tasks  map[string]*Task
	queue  []*Task
	closed bool
	wake   chan struct{}
}

type Option func(*Coordinator)

func WithBus(b evbus.Bus) Option {
	return func(c *Coordinator) { c.bus = b }
}

func WithGauge(g Gauge) Option {
	return func(c *Coordinator) { c.gauge = g }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New creates a coordinator; Start launches its worker.
func New(f Fetcher, opts ...Option) *Coordinator {
	ctx, stop := context.WithCancel(context.Background())
	c := &Coordinator{
		fetcher: f,
		bus:     evbus.New(),
		gauge:   nopGauge{},
		logger:  logging.Nop(),
		ctx:     ctx,
		stop:    stop,
		tasks:   make(map[string]*Task),
		wake:    make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "coordinator")
	return c
}

// Bus returns the event bus tasks publish to.
func (c *Coordinator) Bus() evbus.Bus { return c.bus }

// Start launches the worker.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.work()
}

// Close cancels every task, stops the worker and waits for it.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	queued := c.queue
	c.queue = nil
	c.mu.Unlock()

	c.stop()
	for _, t := range queued {
		c.finish(t, Result{Err: fmt.Errorf("task %s: %w", t.ContentID, common.ErrCancelled)})
	}
	c.wg.Wait()
}

// StartOrFetch returns the live task for obj's content id or enqueues a new
// one. It never blocks on the fetch itself.
func (c *Coordinator) StartOrFetch(obj *models.Object) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if t, ok := c.tasks[obj.ContentHash]; ok {
		return t, nil
	}

	t := newTask(c, obj)
	t.Register(func(p models.Progress) {
		c.bus.Publish(TopicProgress, NewEvent(t, p))
	})
	c.tasks[t.ContentID] = t
	c.queue = append(c.queue, t)
	c.gauge.TaskStarted()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	c.logger.Debug(c.ctx, "task queued", "content_id", t.ContentID, "task_id", t.ID)
	return t, nil
}

// Lookup returns the live task for a content id.
func (c *Coordinator) Lookup(contentID string) (*Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[contentID]
	return t, ok
}

// Tasks returns a snapshot of the live tasks.
func (c *Coordinator) Tasks() []*Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t)
	}
	return out
}

func (c *Coordinator) work() {
	defer c.wg.Done()
	for {
		t, ok := c.next()
		if !ok {
			return
		}
		c.run(t)
	}
}

// next pops the oldest queued task, waiting for one if needed.
func (c *Coordinator) next() (*Task, bool) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			t := c.queue[0]
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return t, true
		}
		c.mu.Unlock()

		select {
		case <-c.wake:
		case <-c.ctx.Done():
			return nil, false
		}
	}
}

func (c *Coordinator) run(t *Task) {
	if t.ctx.Err() != nil {
		c.finish(t, Result{Err: fmt.Errorf("task %s: %w", t.ContentID, common.ErrCancelled)})
		return
	}
	res, err := c.fetcher.Fetch(t.ctx, t.Object, t.emit)
	if err != nil {
		c.finish(t, Result{Err: err})
		return
	}
	c.finish(t, Result{Path: res.Path, Channel: res.Channel})
}

// finish removes t from the registry before resolving it, so a caller woken
// by Await that asks again gets a fresh task.
func (c *Coordinator) finish(t *Task, r Result) {
	c.mu.Lock()
	if c.tasks[t.ContentID] == t {
		delete(c.tasks, t.ContentID)
		c.gauge.TaskFinished()
	}
	c.mu.Unlock()

	outcome := models.OutcomeSuccess
	switch {
	case r.Err != nil && common.IsCancelled(r.Err):
		outcome = models.OutcomeCancelled
		r.Channel = models.ChannelNone
		c.logger.Info(c.ctx, "fetch cancelled", "content_id", t.ContentID)
	case r.Err != nil:
		outcome = models.OutcomeFailure
		r.Channel = models.ChannelNone
		c.logger.Warn(c.ctx, "fetch failed", "content_id", t.ContentID, "error", r.Err)
	default:
		c.logger.Info(c.ctx, "fetch complete", "content_id", t.ContentID, "channel", r.Channel.String(), "path", r.Path)
	}

	t.resolve(r, outcome)
	if outcome == models.OutcomeSuccess {
		c.bus.Publish(TopicContentReady, t.Object, r.Path)
	}
}

// cancelTask resolves a queued task at once and signals a running one.
func (c *Coordinator) cancelTask(t *Task) {
	c.mu.Lock()
	queued := false
	for i, q := range c.queue {
		if q == t {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			queued = true
			break
		}
	}
	c.mu.Unlock()

	t.cancel()
	if queued {
		c.finish(t, Result{Err: fmt.Errorf("task %s: %w", t.ContentID, common.ErrCancelled)})
	}
}
