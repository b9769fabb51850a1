// Package cmd is a transport-agnostic command core: a tree of named, aliased
// commands and groups with inherited options and checks, an invocation
// pipeline that binds raw input to typed arguments through a converter
// registry, and pre/post-call signals observable by every ancestor of the
// invoked command. How commands are registered and dispatched (Discord slash,
// prefixed text, CLI) is defined by adapters built on top.
package cmd

import (
	"context"
	"regexp"
	"strings"

	"github.com/keshon/interactkit/pkg/converter"
)

// namePattern is the platform naming rule for commands and groups.
var namePattern = regexp.MustCompile(`^[\w-]{1,32}$`)

// Check is an async predicate gating command execution. Checks are inherited:
// a check attached to a group runs for every descendant command, ancestors
// first, before the command's own checks.
type Check struct {
	Name string
	Run  func(ctx context.Context, inv *Invocation) (bool, error)
}

// Observer receives pre-call or post-call signals for an invocation.
type Observer func(inv *Invocation)

// Node is the shared capability of groups and commands: identity, parenting,
// option and check inheritance, and call observation.
type Node interface {
	Name() string
	Aliases() []string
	Description() string
	Parent() Node
	FullName() string
	AddCheck(c Check)
	OnPreCall(f Observer)
	OnPostCall(f Observer)
	base() *node
}

// node carries the state every tree node owns. Group and Command embed it.
type node struct {
	self        Node // the embedding node, set at construction
	name        string
	description string
	aliases     []string
	parent      Node
	options     Options
	checks      []Check
	preCall     []Observer
	postCall    []Observer
	children    []Node
	childIndex  map[string]Node // keyed by name and by every alias
}

func newNode(name, description string, aliases []string, options Options) node {
	return node{
		name:        name,
		description: description,
		aliases:     aliases,
		options:     options,
		childIndex:  map[string]Node{},
	}
}

func (n *node) base() *node { return n }

// Name returns the node's primary name.
func (n *node) Name() string { return n.name }

// Aliases returns the node's alternate names.
func (n *node) Aliases() []string { return n.aliases }

// Description returns the human description.
func (n *node) Description() string { return n.description }

// Parent returns the owning node, or nil for an unattached node.
func (n *node) Parent() Node { return n.parent }

// FullName returns the space-joined path from the root to this node.
func (n *node) FullName() string {
	var parts []string
	for cur := n; cur != nil; {
		if cur.name != "" {
			parts = append([]string{cur.name}, parts...)
		}
		if cur.parent == nil {
			break
		}
		cur = cur.parent.base()
	}
	return strings.Join(parts, " ")
}

// AddCheck appends a local check. It runs after all inherited checks.
func (n *node) AddCheck(c Check) { n.checks = append(n.checks, c) }

// OnPreCall registers an observer fired before every descendant invocation.
func (n *node) OnPreCall(f Observer) { n.preCall = append(n.preCall, f) }

// OnPostCall registers an observer fired after every descendant invocation.
func (n *node) OnPostCall(f Observer) { n.postCall = append(n.postCall, f) }

// Children returns the attached children in registration order.
func (n *node) Children() []Node { return n.children }

// add attaches a child. Name or alias collisions within this node and
// re-parenting are configuration errors.
func (n *node) add(child Node) error {
	cb := child.base()
	if !namePattern.MatchString(cb.name) {
		return configErrf("invalid command name %q", cb.name)
	}
	for _, a := range cb.aliases {
		if !namePattern.MatchString(a) {
			return configErrf("invalid alias %q on command %q", a, cb.name)
		}
	}
	if cb.parent != nil {
		return configErrf("node %q is already attached to %q", cb.name, cb.parent.FullName())
	}

	keys := append([]string{cb.name}, cb.aliases...)
	for _, k := range keys {
		if _, dup := n.childIndex[k]; dup {
			return configErrf("duplicate name or alias %q under %q", k, n.FullName())
		}
	}
	for _, k := range keys {
		n.childIndex[k] = child
	}
	n.children = append(n.children, child)
	cb.parent = n.self
	return nil
}

// lookup finds a child by name or alias, folding case when the effective
// options ask for it.
func (n *node) lookup(word string, caseInsensitive bool) Node {
	if child, ok := n.childIndex[word]; ok {
		return child
	}
	if !caseInsensitive {
		return nil
	}
	folded := strings.ToLower(word)
	for k, child := range n.childIndex {
		if strings.ToLower(k) == folded {
			return child
		}
	}
	return nil
}

// resolve consumes words from the view and returns the deepest command the
// token stream names. A structured-only command is returned as soon as it is
// named, without consuming tokens meant for its own children. A word that
// names nothing is left unconsumed.
func (n *node) resolve(view *converter.StringView) *Command {
	fork := view.Fork()
	word, ok := fork.NextWord()
	if !ok {
		return nil
	}
	child := n.lookup(word, n.effectiveOptions().CaseInsensitive)
	if child == nil {
		return nil
	}
	view.Commit(fork)

	if c, isCmd := child.(*Command); isCmd && c.ResolvedKind() == KindSlashOnly {
		return c
	}
	if sub := child.base().resolve(view); sub != nil {
		return sub
	}
	if c, isCmd := child.(*Command); isCmd {
		return c
	}
	return nil
}

// effectiveOptions resolves the option set by walking to the root; the
// nearest non-nil field wins.
func (n *node) effectiveOptions() ResolvedOptions {
	out := ResolvedOptions{Kind: KindAll}
	haveCase, haveAck, haveLevel, haveKind := false, false, false, false
	for cur := n; cur != nil; {
		o := cur.options
		if !haveCase && o.CaseInsensitive != nil {
			out.CaseInsensitive = *o.CaseInsensitive
			haveCase = true
		}
		if !haveAck && o.AutoAcknowledge != nil {
			out.AutoAcknowledge = *o.AutoAcknowledge
			haveAck = true
		}
		if !haveLevel && o.Level != nil {
			out.Level = *o.Level
			haveLevel = true
		}
		if !haveKind && o.Kind != nil {
			out.Kind = *o.Kind
			haveKind = true
		}
		if cur.parent == nil {
			break
		}
		cur = cur.parent.base()
	}
	return out
}

// effectiveChecks concatenates ancestor checks (root first) and local checks.
func (n *node) effectiveChecks() []Check {
	var chain []*node
	for cur := n; cur != nil; {
		chain = append(chain, cur)
		if cur.parent == nil {
			break
		}
		cur = cur.parent.base()
	}
	var out []Check
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].checks...)
	}
	return out
}

// emitPre notifies this node's observers and every ancestor's, node first.
func (n *node) emitPre(inv *Invocation) {
	for cur := n; cur != nil; {
		for _, f := range cur.preCall {
			f(inv)
		}
		if cur.parent == nil {
			break
		}
		cur = cur.parent.base()
	}
}

func (n *node) emitPost(inv *Invocation) {
	for cur := n; cur != nil; {
		for _, f := range cur.postCall {
			f(inv)
		}
		if cur.parent == nil {
			break
		}
		cur = cur.parent.base()
	}
}
