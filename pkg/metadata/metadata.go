// Package metadata consumes declarative parameter-descriptor tables, the
// contract the build-time annotation extractor emits. The engine never
// inspects a handler's signature; handlers get exactly the parameters their
// table declares. Tables are authored (or generated) as YAML and resolved
// against the well-known type descriptors.
package metadata

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/typeset"
)

// Choice is one fixed candidate value of a parameter.
type Choice struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// Parameter is one entry of a descriptor table, in binding order.
type Parameter struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Optional    bool     `yaml:"optional"`
	Description string   `yaml:"description"`
	Default     any      `yaml:"default"`
	Choices     []Choice `yaml:"choices"`
	// Converter names a converter override registered under that key by the
	// host; empty means registry resolution.
	Converter string `yaml:"converter"`
	// Nullable marks the declared type as admitting null.
	Nullable bool `yaml:"nullable"`
}

// CommandMeta describes one command handler's parameter table.
type CommandMeta struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Load parses a YAML descriptor-table document.
func Load(r io.Reader) ([]CommandMeta, error) {
	var out []CommandMeta
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse descriptor table: %w", err)
	}
	return out, nil
}

// Parse parses a YAML descriptor-table document from bytes.
func Parse(data []byte) ([]CommandMeta, error) {
	var out []CommandMeta
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse descriptor table: %w", err)
	}
	return out, nil
}

// Resolver maps type names and converter-override names used by a table to
// concrete descriptors and converters. Types defaults to typeset.Known.
type Resolver struct {
	Types      map[string]*typeset.Descriptor
	Converters map[string]*converter.Converter
}

// Resolve turns a descriptor table entry into engine parameters. A type or
// converter name the resolver does not know is a configuration error.
func (m CommandMeta) Resolve(r Resolver) ([]cmd.Parameter, error) {
	types := r.Types
	if types == nil {
		types = typeset.Known
	}

	params := make([]cmd.Parameter, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		t, ok := types[p.Type]
		if !ok {
			return nil, &cmd.ConfigurationError{Msg: fmt.Sprintf("command %q: unknown parameter type %q", m.Name, p.Type)}
		}
		if p.Nullable {
			t = t.Nullable()
		}

		var override *converter.Converter
		if p.Converter != "" {
			override, ok = r.Converters[p.Converter]
			if !ok {
				return nil, &cmd.ConfigurationError{Msg: fmt.Sprintf("command %q: unknown converter override %q", m.Name, p.Converter)}
			}
		}

		choices := make([]converter.Choice, 0, len(p.Choices))
		for _, ch := range p.Choices {
			choices = append(choices, converter.Choice{Name: ch.Name, Value: ch.Value})
		}

		params = append(params, cmd.Parameter{
			Name:        p.Name,
			Type:        t,
			Description: p.Description,
			Optional:    p.Optional,
			Default:     normalizeDefault(p.Default),
			Choices:     choices,
			Converter:   override,
		})
	}
	return params, nil
}

// normalizeDefault lifts YAML's int defaults to int64, matching what the
// binding pipeline produces.
func normalizeDefault(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}
