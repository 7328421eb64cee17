package ir

// Flatten linearizes a descriptor and its structural children in a fixed
// deterministic pre-order: the node itself first, then the flattened
// children (element for Array/Collection/Optional, left then right for
// Either, each field in declaration order for records). Leaf variants
// flatten to themselves alone. RecursiveRef does not dereference its
// target, so the result is always finite: a cycle contributes exactly one
// RecursiveRef node, never an unrolled copy.
func Flatten(d Descriptor) []Descriptor {
	switch n := d.(type) {
	case *Array:
		return append([]Descriptor{n}, Flatten(n.Elem)...)
	case *Collection:
		return append([]Descriptor{n}, Flatten(n.Elem)...)
	case *Optional:
		return append([]Descriptor{n}, Flatten(n.Elem)...)
	case *Either:
		out := append([]Descriptor{n}, Flatten(n.Left)...)
		return append(out, Flatten(n.Right)...)
	case *Record:
		return flattenFields(n, n.Fields)
	case *ConstructorRecord:
		return flattenFields(n, n.Fields)
	default:
		// Primitive, BoxedPrimitive, Value, ExternalComparable, Opaque,
		// Unsupported, Nothing, RecursiveRef.
		return []Descriptor{d}
	}
}

func flattenFields(rec Descriptor, fields []Field) []Descriptor {
	out := []Descriptor{rec}
	for _, f := range fields {
		out = append(out, Flatten(f.Desc)...)
	}
	return out
}

// FindByID returns the descriptor with the given identity in root's
// flatten, or false if no such node exists. By the identity invariant there
// is at most one match. Its main use is resolving a RecursiveRef's target
// back into a concrete descriptor on demand.
func FindByID(root Descriptor, id int) (Descriptor, bool) {
	for _, d := range Flatten(root) {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}

// FindByType returns every descriptor in root's flatten whose concrete
// variant is V, in flatten order.
func FindByType[V Descriptor](root Descriptor) []V {
	var out []V
	for _, d := range Flatten(root) {
		if v, ok := d.(V); ok {
			out = append(out, v)
		}
	}
	return out
}

// RecursiveRefs resolves every RecursiveRef under root against root itself
// and returns the distinct target descriptors. A target identity that does
// not resolve under root is silently skipped: this happens when root is a
// sub-descriptor of the graph the reference was built in, and callers that
// need every target must pass the original analysis root.
func RecursiveRefs(root Descriptor) []Descriptor {
	var out []Descriptor
	seen := make(map[int]bool)
	for _, ref := range FindByType[*RecursiveRef](root) {
		if seen[ref.Target] {
			continue
		}
		target, ok := FindByID(root, ref.Target)
		if !ok {
			continue
		}
		seen[ref.Target] = true
		out = append(out, target)
	}
	return out
}
