package typeset

import "fmt"

// Assignable reports whether a value of type a is usable where b is expected.
//
// The rules are checked in order: identity, Never, Void, Dynamic, then the
// interface/function pairings with covariant type arguments, contravariant
// function parameters, and the nullability rule (the target must be nullable
// if the source is). A descriptor pair the rules do not cover is a programming
// error and panics rather than answering false.
func Assignable(a, b *Descriptor) bool {
	if a == nil || b == nil {
		panic("typeset: Assignable called with nil descriptor")
	}

	// Identity fires first so Never vs Never is true by reflexivity.
	if a.Equal(b) {
		return true
	}
	if a.kind == KindNever || b.kind == KindNever {
		return false
	}
	if b.kind == KindVoid {
		return true
	}
	if a.kind == KindVoid {
		return false
	}
	if b.kind == KindDynamic {
		return true
	}
	if a.kind == KindDynamic {
		return false
	}

	switch {
	case a.kind == KindInterface && b.kind == KindFunction:
		// Only function values satisfy function-shaped expectations.
		return false

	case a.kind == KindInterface && b.kind == KindInterface:
		if a.name == b.name {
			if len(a.typeArgs) != len(b.typeArgs) {
				return false
			}
			for i := range a.typeArgs {
				if !Assignable(a.typeArgs[i], b.typeArgs[i]) {
					return false
				}
			}
			return nullableOK(a, b)
		}
		// Inherited assignability: depth-first over a's declared supertypes.
		for _, super := range a.supers {
			if Assignable(super, b) {
				return true
			}
		}
		return false

	case a.kind == KindFunction && b.kind == KindInterface:
		if b.name == ObjectName || b.name == FunctionName {
			return nullableOK(a, b)
		}
		return false

	case a.kind == KindFunction && b.kind == KindFunction:
		if len(a.params) != len(b.params) {
			return false
		}
		for i := range b.params {
			// Parameters are contravariant: b's parameter must be usable
			// where a declares its own.
			if !Assignable(b.params[i], a.params[i]) {
				return false
			}
		}
		if !Assignable(b.ret, a.ret) {
			return false
		}
		return nullableOK(a, b)
	}

	panic(fmt.Sprintf("typeset: unhandled descriptor pair %v vs %v", a.kind, b.kind))
}

// nullableOK enforces the nullability rule: a nullable source needs a nullable
// target.
func nullableOK(a, b *Descriptor) bool {
	return b.nullable || !a.nullable
}
