package cmd

// Kind says how a command can be invoked.
type Kind int

const (
	// KindDefault inherits the kind from the nearest ancestor that fixes one.
	KindDefault Kind = iota
	// KindTextOnly restricts invocation to prefixed free-text messages.
	KindTextOnly
	// KindSlashOnly restricts invocation to the platform's slash-command UI.
	KindSlashOnly
	// KindAll allows both.
	KindAll
)

// ResponseLevel is the visibility policy a transport applies to replies for a
// command: public or ephemeral, whether an existing component message is
// preserved rather than replaced, and whether the invoker is mentioned.
type ResponseLevel struct {
	Hidden          bool
	PreserveMessage bool
	MentionInvoker  bool
}

// Common response levels.
var (
	ResponsePublic = ResponseLevel{}
	ResponseHidden = ResponseLevel{Hidden: true}
)

// Options are per-node overrides. Every field is nullable; resolving an
// effective value walks from the node to the root and the nearest non-nil
// field wins.
type Options struct {
	// CaseInsensitive folds child names during text resolution.
	CaseInsensitive *bool
	// AutoAcknowledge makes the transport defer slash interactions before the
	// handler runs. Commands that open modals must disable it.
	AutoAcknowledge *bool
	// Level is the default response visibility for the subtree.
	Level *ResponseLevel
	// Kind is the default invocation kind for descendants that do not fix one.
	Kind *Kind
}

// ResolvedOptions is a fully resolved option set with defaults applied.
type ResolvedOptions struct {
	CaseInsensitive bool
	AutoAcknowledge bool
	Level           ResponseLevel
	Kind            Kind
}

// Bool is a convenience for building Options literals.
func Bool(b bool) *bool { return &b }

// KindOf is a convenience for building Options literals.
func KindOf(k Kind) *Kind { return &k }

// LevelOf is a convenience for building Options literals.
func LevelOf(l ResponseLevel) *ResponseLevel { return &l }
