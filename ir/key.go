package ir

// CanBeKey reports whether the described type may serve as a sort or
// comparison key in generated code.
//
// Leaves answer from their capability markers: Primitive and BoxedPrimitive
// consult the wrapper type's ordered-key marker, RecursiveRef and Value the
// described type's own, ExternalComparable the foreign-comparable marker,
// and Unsupported the generic comparable marker (an unsupported-but-
// comparable type is still usable as an opaque key). Sequence shapes,
// Either, Opaque, and Nothing are never keys regardless of content.
//
// A record-shaped descriptor is a key only if every leaf in its transitive
// flatten is a key: a single non-comparable field anywhere disqualifies the
// whole record. Nested record nodes inside the flatten defer to their own
// leaves, which already appear in the same flatten; that is what keeps the
// predicate terminating when a record reaches itself through a
// RecursiveRef.
func CanBeKey(d Descriptor) bool {
	switch n := d.(type) {
	case *Primitive:
		return n.Wrapper.Caps.Has(CapOrderedKey)
	case *BoxedPrimitive:
		return n.Wrapper.Caps.Has(CapOrderedKey)
	case *Value:
		return n.Type().Caps.Has(CapOrderedKey)
	case *RecursiveRef:
		return n.Type().Caps.Has(CapOrderedKey)
	case *ExternalComparable:
		return n.Type().Caps.Has(CapForeign)
	case *Unsupported:
		return n.Type().Caps.Has(CapComparable)
	case *Record, *ConstructorRecord:
		for _, f := range Flatten(d) {
			if _, isRecord := RecordFields(f); isRecord {
				continue
			}
			if !CanBeKey(f) {
				return false
			}
		}
		return true
	default:
		// Array, Collection, Optional, Either, Opaque, Nothing.
		return false
	}
}
