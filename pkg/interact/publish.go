package interact

import "context"

// ButtonStyle mirrors the platform button styles.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Button is one publishable button.
type Button struct {
	ID    string
	Label string
	Style ButtonStyle
}

// SelectOption is one entry of a select menu.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// Menu is one publishable select menu.
type Menu struct {
	ID          string
	Placeholder string
	Options     []SelectOption
	MinValues   int
	MaxValues   int
}

// Row is one layout row: either up to five buttons or a single menu.
type Row struct {
	Buttons []Button
	Menu    *Menu
}

// ModalField is one text input of a modal.
type ModalField struct {
	ID          string
	Label       string
	Placeholder string
	Required    bool
	Paragraph   bool
}

// Modal is a publishable modal dialog. Its ID is the correlation id of the
// submit event.
type Modal struct {
	ID     string
	Title  string
	Fields []ModalField
}

// MessageRef identifies a published component message so it can be edited or
// disabled later.
type MessageRef struct {
	ChannelID string
	MessageID string
	Raw       any
}

// Publisher is the narrow transport surface the session engine publishes
// through. The Discord adapter implements it against a live session; tests
// use a fake.
type Publisher interface {
	// SendComponents publishes a message with component rows in the flow the
	// origin context belongs to and returns a reference to it.
	SendComponents(ctx context.Context, origin *Context, content string, rows []Row) (MessageRef, error)

	// EditComponents replaces the content and rows of a published message.
	EditComponents(ctx context.Context, ref MessageRef, content string, rows []Row) error

	// DisableComponents re-renders the rows of a published message in a
	// non-interactive state. Called unconditionally when a selection
	// concludes, whatever the outcome.
	DisableComponents(ctx context.Context, ref MessageRef, rows []Row) error

	// OpenModal presents a modal in response to the origin context's
	// interaction.
	OpenModal(ctx context.Context, origin *Context, m Modal) error
}
