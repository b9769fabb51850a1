package interact

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/converter"
)

// Platform layout constraints.
const (
	buttonsPerRow = 5
	maxButtonRows = 5
	menuPageSize  = 25
)

// Pseudo-option values used by the pagination loop. They never collide with
// real values because real menu options are indexed numerically.
const (
	pagePrevValue = "interactkit:page:prev"
	pageNextValue = "interactkit:page:next"
)

// SelectOpt configures a selection operation.
type SelectOpt func(*selectConfig)

type selectConfig struct {
	userID string
	expiry time.Time
}

// OnlyUser restricts the selection to events from one user; everybody else's
// clicks are ignored and the listeners stay live.
func OnlyUser(userID string) SelectOpt {
	return func(c *selectConfig) { c.userID = userID }
}

// Until bounds the selection with an absolute expiry instant.
func Until(t time.Time) SelectOpt {
	return func(c *selectConfig) { c.expiry = t }
}

func buildConfig(opts []SelectOpt) selectConfig {
	var c selectConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *Context) freshID(cfg selectConfig) ComponentID {
	return ComponentID{ID: FreshID(), UserID: cfg.userID, ExpiresAt: cfg.expiry}
}

// SelectButton publishes one button per choice (batched five per row), races
// them, and returns the winning choice with the delegated context of the
// click. The published rows are disabled when the operation concludes,
// whatever the outcome.
func (c *Context) SelectButton(ctx context.Context, prompt string, choices []converter.Choice, opts ...SelectOpt) (converter.Choice, *Context, error) {
	var zero converter.Choice
	if err := c.ensureAnchored(); err != nil {
		return zero, nil, err
	}
	if len(choices) == 0 || len(choices) > buttonsPerRow*maxButtonRows {
		return zero, nil, &cmd.ConfigurationError{
			Msg: fmt.Sprintf("button selection needs 1..%d choices, got %d", buttonsPerRow*maxButtonRows, len(choices)),
		}
	}
	cfg := buildConfig(opts)

	ids := make([]ComponentID, len(choices))
	byID := make(map[string]converter.Choice, len(choices))
	var rows []Row
	for i, choice := range choices {
		ids[i] = c.freshID(cfg)
		byID[ids[i].ID] = choice
		if i%buttonsPerRow == 0 {
			rows = append(rows, Row{})
		}
		row := &rows[len(rows)-1]
		row.Buttons = append(row.Buttons, Button{
			ID:    ids[i].ID,
			Label: choice.Name,
			Style: StyleSecondary,
		})
	}

	ref, err := c.engine.publisher.SendComponents(ctx, c, prompt, rows)
	if err != nil {
		return zero, nil, err
	}
	// Disabling the published rows is mandatory cleanup, not best effort.
	defer func() {
		if derr := c.engine.publisher.DisableComponents(ctx, ref, rows); derr != nil {
			logWarn("disable buttons: %v", derr)
		}
	}()

	delegate, err := c.Race(ctx, ids)
	if err != nil {
		return zero, nil, err
	}
	return byID[delegate.event.ComponentID], delegate, nil
}

// Confirm is a button selection over the fixed yes/no domain.
func (c *Context) Confirm(ctx context.Context, prompt string, opts ...SelectOpt) (bool, *Context, error) {
	choice, delegate, err := c.SelectButton(ctx, prompt, []converter.Choice{
		{Name: "Yes", Value: true},
		{Name: "No", Value: false},
	}, opts...)
	if err != nil {
		return false, nil, err
	}
	ok, _ := choice.Value.(bool)
	return ok, delegate, nil
}

// SelectMenu publishes a single-choice select menu and waits for a genuine
// value selection. Candidate sets beyond one page get previous/next
// pseudo-options; selecting one republishes the menu at the new offset inside
// the same logical operation, with a fresh correlation id, and keeps waiting.
// Only a real selection ends the loop and produces the delegate. The menu is
// disabled on completion unconditionally.
func (c *Context) SelectMenu(ctx context.Context, prompt string, choices []converter.Choice, opts ...SelectOpt) (converter.Choice, *Context, error) {
	var zero converter.Choice
	if err := c.ensureAnchored(); err != nil {
		return zero, nil, err
	}
	if len(choices) == 0 {
		return zero, nil, &cmd.ConfigurationError{Msg: "menu selection over zero choices"}
	}
	cfg := buildConfig(opts)

	var (
		ref      MessageRef
		sent     bool
		lastRows []Row
	)
	defer func() {
		if sent {
			if derr := c.engine.publisher.DisableComponents(ctx, ref, lastRows); derr != nil {
				logWarn("disable menu: %v", derr)
			}
		}
	}()

	offset := 0
	for {
		page := paginate(choices, offset)
		id := c.freshID(cfg)

		menu := Menu{
			ID:          id.ID,
			Placeholder: prompt,
			MinValues:   1,
			MaxValues:   1,
		}
		if page.hasPrev {
			menu.Options = append(menu.Options, SelectOption{Label: "« Previous page", Value: pagePrevValue})
		}
		for i, choice := range page.items {
			menu.Options = append(menu.Options, SelectOption{
				Label: choice.Name,
				Value: strconv.Itoa(page.start + i),
			})
		}
		if page.hasNext {
			menu.Options = append(menu.Options, SelectOption{Label: "Next page »", Value: pageNextValue})
		}
		rows := []Row{{Menu: &menu}}

		var err error
		if !sent {
			ref, err = c.engine.publisher.SendComponents(ctx, c, prompt, rows)
			sent = true
		} else {
			err = c.engine.publisher.EditComponents(ctx, ref, prompt, rows)
		}
		if err != nil {
			return zero, nil, err
		}
		lastRows = rows

		ev, err := c.awaitRaw(ctx, id)
		if err != nil {
			return zero, nil, err
		}
		if len(ev.Values) != 1 {
			return zero, nil, fmt.Errorf("menu selection: expected one value, got %d", len(ev.Values))
		}

		switch ev.Values[0] {
		case pagePrevValue:
			offset = page.prevOffset
			continue
		case pageNextValue:
			offset = page.nextOffset
			continue
		}

		idx, err := strconv.Atoi(ev.Values[0])
		if err != nil || idx < 0 || idx >= len(choices) {
			return zero, nil, fmt.Errorf("menu selection: bad value %q", ev.Values[0])
		}
		return choices[idx], c.adopt(ev), nil
	}
}

// SelectMenuMulti publishes a multi-choice menu: a single round, no
// pagination, the selection-count bound equal to the candidate count. Returns
// the selected choices and the delegate.
func (c *Context) SelectMenuMulti(ctx context.Context, prompt string, choices []converter.Choice, opts ...SelectOpt) ([]converter.Choice, *Context, error) {
	if err := c.ensureAnchored(); err != nil {
		return nil, nil, err
	}
	if len(choices) == 0 || len(choices) > menuPageSize {
		return nil, nil, &cmd.ConfigurationError{
			Msg: fmt.Sprintf("multi selection needs 1..%d choices, got %d", menuPageSize, len(choices)),
		}
	}
	cfg := buildConfig(opts)
	id := c.freshID(cfg)

	menu := Menu{
		ID:          id.ID,
		Placeholder: prompt,
		MinValues:   1,
		MaxValues:   len(choices),
	}
	for i, choice := range choices {
		menu.Options = append(menu.Options, SelectOption{Label: choice.Name, Value: strconv.Itoa(i)})
	}
	rows := []Row{{Menu: &menu}}

	ref, err := c.engine.publisher.SendComponents(ctx, c, prompt, rows)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if derr := c.engine.publisher.DisableComponents(ctx, ref, rows); derr != nil {
			logWarn("disable menu: %v", derr)
		}
	}()

	ev, err := c.awaitRaw(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var picked []converter.Choice
	for _, v := range ev.Values {
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 0 || idx >= len(choices) {
			return nil, nil, fmt.Errorf("multi selection: bad value %q", v)
		}
		picked = append(picked, choices[idx])
	}
	return picked, c.adopt(ev), nil
}

// page describes one window of a paginated menu.
type page struct {
	items      []converter.Choice
	start      int
	hasPrev    bool
	hasNext    bool
	prevOffset int
	nextOffset int
}

// paginate computes the window at offset. A page holds up to 25 options;
// each pseudo-option shown costs one value slot, so a first page that needs a
// "next" control carries 24 values and a middle page carries 23.
func paginate(choices []converter.Choice, offset int) page {
	p := page{start: offset, hasPrev: offset > 0}

	slots := menuPageSize
	if p.hasPrev {
		slots--
	}
	rest := len(choices) - offset
	if rest > slots {
		p.hasNext = true
		slots--
	}
	if rest < slots {
		slots = rest
	}

	p.items = choices[offset : offset+slots]
	p.nextOffset = offset + slots
	p.prevOffset = offset - prevWindow(offset)
	return p
}

// prevWindow returns how many values the page before the given offset held,
// so "previous" lands exactly one page back.
func prevWindow(offset int) int {
	if offset <= 0 {
		return 0
	}
	// Replay the forward pagination to find the offset whose next window
	// starts at offset.
	at := 0
	for {
		slots := menuPageSize
		if at > 0 {
			slots--
		}
		// A page that is followed by another always shows "next".
		slots--
		next := at + slots
		if next >= offset {
			return offset - at
		}
		at = next
	}
}
