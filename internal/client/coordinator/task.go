package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/google/uuid"
)

// Result is the resolution of a task. Err is nil on success; a cancelled
// task has an Err matching common.ErrCancelled.
type Result struct {
	Path    string
	Channel models.Channel
	Err     error
}

// Subscription identifies a registered observer.
type Subscription uint64

// Task is the handle of one fetch.
type Task struct {
	ID        string
	ContentID string
	Object    *models.Object
	Created   time.Time

	ctx    context.Context
	cancel context.CancelFunc
	coord  *Coordinator

	done   chan struct{}
	result Result

	mu        sync.Mutex
	last      models.Progress
	nextSub   Subscription
	observers map[Subscription]models.ProgressFunc
}

func newTask(c *Coordinator, obj *models.Object) *Task {
	ctx, cancel := context.WithCancel(c.ctx)
	return &Task{
		ID:        uuid.NewString(),
		ContentID: obj.ContentHash,
		Object:    obj,
		Created:   time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		coord:     c,
		done:      make(chan struct{}),
		last:      models.Progress{State: models.StatePending},
		observers: make(map[Subscription]models.ProgressFunc),
	}
}

// Await blocks until the task resolves or ctx is done. Giving up on ctx
// does not cancel the task.
func (t *Task) Await(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, t.result.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel asks the task to stop. A queued task resolves at once; a running
// one stops at the next chunk boundary of its channel and discards its
// partial file.
func (t *Task) Cancel() {
	t.coord.cancelTask(t)
}

// Last returns the most recent progress event.
func (t *Task) Last() models.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Register adds an observer and immediately replays the last event to it.
// Observers are called synchronously in event order and must not block or
// call back into the task.
func (t *Task) Register(fn models.ProgressFunc) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSub++
	id := t.nextSub
	t.observers[id] = fn
	fn(t.last)
	return id
}

func (t *Task) Unregister(id Subscription) {
	t.mu.Lock()
	delete(t.observers, id)
	t.mu.Unlock()
}

// Watch streams the task's events until the terminal one or until ctx is
// done; the channel is closed afterwards. Slow readers never stall the
// worker.
func (t *Task) Watch(ctx context.Context) <-chan models.Progress {
	out := make(chan models.Progress)
	var (
		mu      sync.Mutex
		pending []models.Progress
		wake    = make(chan struct{}, 1)
	)
	sub := t.Register(func(p models.Progress) {
		mu.Lock()
		pending = append(pending, p)
		mu.Unlock()
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(out)
		defer t.Unregister(sub)
		for {
			mu.Lock()
			batch := pending
			pending = nil
			mu.Unlock()

			for _, p := range batch {
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
				if p.Terminal() {
					return
				}
			}

			select {
			case <-wake:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// emit records p and hands it to every observer.
func (t *Task) emit(p models.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.Terminal() {
		return
	}
	t.last = p
	for _, fn := range t.observers {
		fn(p)
	}
}

// resolve publishes the single terminal event and releases Await.
func (t *Task) resolve(r Result, outcome models.Outcome) {
	t.result = r
	t.emit(models.Progress{State: models.StateComplete, Channel: r.Channel, Outcome: outcome})
	t.cancel()
	close(t.done)
}
