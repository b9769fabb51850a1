package interact

import (
	"context"
	"log"
	"time"
)

func logWarn(format string, args ...any) {
	log.Printf("[WARN] interact: "+format, args...)
}

// ModalOpt configures GetModal.
type ModalOpt func(*modalConfig)

type modalConfig struct {
	id     string
	userID string
	expiry time.Time
}

// WithModalID fixes the correlation id of the modal instead of generating a
// fresh one.
func WithModalID(id string) ModalOpt {
	return func(c *modalConfig) { c.id = id }
}

// ModalOnlyUser restricts the submit event to one user.
func ModalOnlyUser(userID string) ModalOpt {
	return func(c *modalConfig) { c.userID = userID }
}

// ModalUntil bounds the await with an absolute expiry instant.
func ModalUntil(t time.Time) ModalOpt {
	return func(c *modalConfig) { c.expiry = t }
}

// GetModal publishes a modal and awaits its single submit event: one modal,
// one listener, no race. Returns the submitted fields keyed by field id and
// the delegated context of the submission.
func (c *Context) GetModal(ctx context.Context, title string, fields []ModalField, opts ...ModalOpt) (map[string]string, *Context, error) {
	if err := c.ensureAnchored(); err != nil {
		return nil, nil, err
	}

	cfg := modalConfig{id: FreshID()}
	for _, opt := range opts {
		opt(&cfg)
	}
	id := ComponentID{ID: cfg.id, UserID: cfg.userID, ExpiresAt: cfg.expiry}

	ch := c.engine.table.Register(id)
	defer c.engine.table.Unregister(id.ID)

	if err := c.engine.publisher.OpenModal(ctx, c, Modal{ID: id.ID, Title: title, Fields: fields}); err != nil {
		return nil, nil, err
	}

	timer := time.NewTimer(c.deadlineFor(id))
	defer timer.Stop()

	select {
	case ev := <-ch:
		delegate := c.adopt(&ev)
		return ev.Fields, delegate, nil
	case <-timer.C:
		return nil, nil, ErrTimeout
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
