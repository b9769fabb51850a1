// Package typeset describes argument types as nodes in an assignability
// lattice. Converters and parameter declarations reference descriptors; the
// binding pipeline asks the lattice which converter output fits which declared
// parameter type. Identity is structural: two descriptors with the same shape
// are the same node.
package typeset

import "strings"

// Kind discriminates the descriptor variants.
type Kind int

const (
	// KindDynamic is the top type: everything is assignable to it.
	KindDynamic Kind = iota
	// KindVoid accepts every type except Never (an ignored result).
	KindVoid
	// KindNever is the bottom type: accepts and produces nothing.
	KindNever
	// KindInterface is a named type with optional type arguments and supertypes.
	KindInterface
	// KindFunction is a function shape with parameter and return types.
	KindFunction
)

// Names of the two universal interface types. A function value satisfies an
// expectation of either of these (and nothing else interface-shaped).
const (
	ObjectName   = "object"
	FunctionName = "function"
)

// Descriptor is one node in the lattice. Descriptors are immutable after
// construction; share them freely.
type Descriptor struct {
	kind     Kind
	name     string
	nullable bool
	typeArgs []*Descriptor
	supers   []*Descriptor
	params   []*Descriptor
	ret      *Descriptor
}

var (
	dynamicType = &Descriptor{kind: KindDynamic}
	voidType    = &Descriptor{kind: KindVoid}
	neverType   = &Descriptor{kind: KindNever}
)

// Dynamic returns the top type.
func Dynamic() *Descriptor { return dynamicType }

// Void returns the void type.
func Void() *Descriptor { return voidType }

// Never returns the bottom type.
func Never() *Descriptor { return neverType }

// InterfaceOption configures NewInterface.
type InterfaceOption func(*Descriptor)

// WithTypeArgs sets the type arguments of an interface descriptor.
func WithTypeArgs(args ...*Descriptor) InterfaceOption {
	return func(d *Descriptor) { d.typeArgs = args }
}

// WithSupers sets the declared supertypes of an interface descriptor.
func WithSupers(supers ...*Descriptor) InterfaceOption {
	return func(d *Descriptor) { d.supers = supers }
}

// NewInterface builds an interface descriptor with the given base identity.
func NewInterface(name string, opts ...InterfaceOption) *Descriptor {
	d := &Descriptor{kind: KindInterface, name: name}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFunction builds a function descriptor.
func NewFunction(params []*Descriptor, ret *Descriptor) *Descriptor {
	if ret == nil {
		ret = voidType
	}
	return &Descriptor{kind: KindFunction, params: params, ret: ret}
}

// Kind returns the descriptor variant.
func (d *Descriptor) Kind() Kind { return d.kind }

// Name returns the base identity of an interface descriptor, "" otherwise.
func (d *Descriptor) Name() string { return d.name }

// IsNullable reports whether the descriptor admits the null value.
func (d *Descriptor) IsNullable() bool { return d.nullable }

// TypeArgs returns the type arguments of an interface descriptor.
func (d *Descriptor) TypeArgs() []*Descriptor { return d.typeArgs }

// Supers returns the declared supertypes of an interface descriptor.
func (d *Descriptor) Supers() []*Descriptor { return d.supers }

// Params returns the parameter types of a function descriptor.
func (d *Descriptor) Params() []*Descriptor { return d.params }

// Return returns the return type of a function descriptor.
func (d *Descriptor) Return() *Descriptor { return d.ret }

// Nullable returns a copy of d that admits null. Dynamic, Void and Never are
// returned unchanged; nullability is meaningless for them.
func (d *Descriptor) Nullable() *Descriptor {
	switch d.kind {
	case KindInterface, KindFunction:
		if d.nullable {
			return d
		}
		c := *d
		c.nullable = true
		return &c
	default:
		return d
	}
}

// Key returns the canonical string identity of the descriptor. Two descriptors
// with the same key are the same lattice node.
func (d *Descriptor) Key() string {
	var b strings.Builder
	d.writeKey(&b)
	return b.String()
}

func (d *Descriptor) writeKey(b *strings.Builder) {
	switch d.kind {
	case KindDynamic:
		b.WriteString("dynamic")
	case KindVoid:
		b.WriteString("void")
	case KindNever:
		b.WriteString("never")
	case KindInterface:
		b.WriteString(d.name)
		if len(d.typeArgs) > 0 {
			b.WriteByte('<')
			for i, a := range d.typeArgs {
				if i > 0 {
					b.WriteByte(',')
				}
				a.writeKey(b)
			}
			b.WriteByte('>')
		}
		if d.nullable {
			b.WriteByte('?')
		}
	case KindFunction:
		b.WriteString("fn(")
		for i, p := range d.params {
			if i > 0 {
				b.WriteByte(',')
			}
			p.writeKey(b)
		}
		b.WriteString(")->")
		d.ret.writeKey(b)
		if d.nullable {
			b.WriteByte('?')
		}
	}
}

// Equal reports structural identity.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	return d.Key() == other.Key()
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string { return d.Key() }
