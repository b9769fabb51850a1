package interact

import (
	"context"
	"errors"
	"time"

	"github.com/keshon/interactkit/pkg/cmd"
)

// ErrTimeout reports an await that exceeded its deadline.
var ErrTimeout = errors.New("interaction timed out")

// DefaultTimeout bounds awaits when neither the component id nor the engine
// sets a deadline.
const DefaultTimeout = 5 * time.Minute

// Engine ties the listener table to a publisher and hands out interactive
// contexts for command invocations.
type Engine struct {
	table     *ListenerTable
	publisher Publisher
	timeout   time.Duration
}

// NewEngine builds an engine. A zero timeout falls back to DefaultTimeout.
func NewEngine(table *ListenerTable, publisher Publisher, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{table: table, publisher: publisher, timeout: timeout}
}

// Table returns the engine's listener table; the transport dispatches
// follow-up events into it.
func (e *Engine) Table() *ListenerTable { return e.table }

// NewContext wraps a command invocation into an interactive context, the root
// of an await chain.
func (e *Engine) NewContext(inv *cmd.Invocation) *Context {
	return &Context{engine: e, inv: inv}
}

// Context is one link of an interactive chain. The chain starts at a command
// invocation; every await spawns a delegate holding the follow-up event, and
// operations on any link transparently forward to the innermost delegate.
type Context struct {
	engine   *Engine
	inv      *cmd.Invocation
	event    *Event
	parent   *Context
	delegate *Context
}

// Invocation walks toward the originating command invocation.
func (c *Context) Invocation() *cmd.Invocation {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.inv != nil {
			return cur.inv
		}
	}
	return nil
}

// Event returns the follow-up event this context wraps, nil for the root.
func (c *Context) Event() *Event { return c.event }

// Parent returns the context that spawned this one.
func (c *Context) Parent() *Context { return c.parent }

// Latest follows the delegate chain to the innermost context: the one the
// next await or reply should act on.
func (c *Context) Latest() *Context {
	cur := c
	for cur.delegate != nil {
		cur = cur.delegate
	}
	return cur
}

// ensureAnchored fails interactive operations on a context created outside
// any command invocation. That is a wiring mistake, surfaced synchronously.
func (c *Context) ensureAnchored() error {
	if c.Invocation() == nil {
		return &cmd.ConfigurationError{Msg: "interactive operation on a context with no originating invocation"}
	}
	return nil
}

func (c *Context) deadlineFor(id ComponentID) time.Duration {
	d := c.engine.timeout
	if !id.ExpiresAt.IsZero() {
		if until := time.Until(id.ExpiresAt); until < d {
			d = until
		}
	}
	return d
}

// awaitRaw waits for the single event matching id, without linking a
// delegate. The listener is removed exactly once: by delivery, or by the
// deferred unregister on timeout and cancellation.
func (c *Context) awaitRaw(ctx context.Context, id ComponentID) (*Event, error) {
	if err := c.ensureAnchored(); err != nil {
		return nil, err
	}

	ch := c.engine.table.Register(id)
	defer c.engine.table.Unregister(id.ID)

	timer := time.NewTimer(c.deadlineFor(id))
	defer timer.Stop()

	select {
	case ev := <-ch:
		return &ev, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// adopt wraps a follow-up event in a new context, parents it on the innermost
// delegate, and replaces the chain's delegate with it. One await outstanding
// per chain: each adoption replaces the previous delegate rather than
// stacking.
func (c *Context) adopt(ev *Event) *Context {
	latest := c.Latest()
	child := &Context{engine: c.engine, event: ev, parent: latest}
	latest.delegate = child
	return child
}

// AwaitComponent registers exactly one listener for the id and suspends until
// its event arrives, returning the delegated context carrying the event.
// Fails with ErrTimeout on deadline expiry.
func (c *Context) AwaitComponent(ctx context.Context, id ComponentID) (*Context, error) {
	ev, err := c.awaitRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.adopt(ev), nil
}

// Race registers one listener per id and waits for the first to resolve.
// Losers are unregistered so no listener outlives the race. When every
// listener fails, the last observed failure is returned.
func (c *Context) Race(ctx context.Context, ids []ComponentID) (*Context, error) {
	if err := c.ensureAnchored(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &cmd.ConfigurationError{Msg: "race over zero components"}
	}

	type outcome struct {
		ev  *Event
		err error
	}
	results := make(chan outcome, len(ids))
	done := make(chan struct{})
	defer close(done)

	for _, id := range ids {
		go func(id ComponentID) {
			ch := c.engine.table.Register(id)
			timer := time.NewTimer(c.deadlineFor(id))
			defer timer.Stop()

			select {
			case ev := <-ch:
				results <- outcome{ev: &ev}
			case <-timer.C:
				c.engine.table.Unregister(id.ID)
				results <- outcome{err: ErrTimeout}
			case <-ctx.Done():
				c.engine.table.Unregister(id.ID)
				results <- outcome{err: ctx.Err()}
			case <-done:
				c.engine.table.Unregister(id.ID)
			}
		}(id)
	}

	var lastErr error
	for range ids {
		select {
		case res := <-results:
			if res.err != nil {
				lastErr = res.err
				continue
			}
			// First success wins; closing done (deferred) unregisters the
			// losers.
			return c.adopt(res.ev), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
