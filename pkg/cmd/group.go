package cmd

// Group is a pure routing node: it has children but no handler.
type Group struct {
	node
}

// NewGroup builds a detached group. Attach it with Add on a parent or with
// Dispatcher.Add.
func NewGroup(name, description string, opts ...GroupOption) *Group {
	g := &Group{node: newNode(name, description, nil, Options{})}
	g.self = g
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GroupOption configures NewGroup.
type GroupOption func(*Group)

// WithGroupAliases sets the group's alternate names.
func WithGroupAliases(aliases ...string) GroupOption {
	return func(g *Group) { g.aliases = aliases }
}

// WithGroupOptions sets the group's option overrides.
func WithGroupOptions(o Options) GroupOption {
	return func(g *Group) { g.options = o }
}

// Add attaches a child command or group.
func (g *Group) Add(child Node) error { return g.add(child) }

// MustAdd attaches a child and panics on configuration errors. Registration
// happens at startup; a broken tree should not boot.
func (g *Group) MustAdd(child Node) {
	if err := g.add(child); err != nil {
		panic(err)
	}
}

// HasSlashDescendant reports whether any command below this group is
// advertisable to the platform as a structured command. Groups with none are
// omitted from the advertised tree.
func (g *Group) HasSlashDescendant() bool {
	for _, child := range g.children {
		switch c := child.(type) {
		case *Command:
			if c.ResolvedKind() != KindTextOnly {
				return true
			}
		case *Group:
			if c.HasSlashDescendant() {
				return true
			}
		}
	}
	return false
}
