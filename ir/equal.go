package ir

import (
	"encoding/binary"
	"hash/fnv"
)

// Equal reports whether two descriptors are structurally equal. Equality is
// defined over an explicit projection of each variant: identity, type
// handle, and the variant payload, recursing into element and field
// descriptors. Executable payload is excluded: BoxedPrimitive compares only
// its (id, type, wrapper) projection, never its box/unbox fragments, since
// code fragments cannot be compared meaningfully.
func Equal(a, b Descriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.ID() != b.ID() || a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case *Primitive:
		y := b.(*Primitive)
		return x.Default == y.Default && x.Wrapper == y.Wrapper
	case *BoxedPrimitive:
		y := b.(*BoxedPrimitive)
		return x.Wrapper == y.Wrapper
	case *Array:
		return Equal(x.Elem, b.(*Array).Elem)
	case *Collection:
		return Equal(x.Elem, b.(*Collection).Elem)
	case *Optional:
		return Equal(x.Elem, b.(*Optional).Elem)
	case *Either:
		y := b.(*Either)
		return Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Record:
		return fieldsEqual(x.Fields, b.(*Record).Fields)
	case *ConstructorRecord:
		y := b.(*ConstructorRecord)
		return x.Ctor == y.Ctor && x.Mutable == y.Mutable && fieldsEqual(x.Fields, y.Fields)
	case *Unsupported:
		y := b.(*Unsupported)
		if len(x.Errors) != len(y.Errors) {
			return false
		}
		for i := range x.Errors {
			if x.Errors[i] != y.Errors[i] {
				return false
			}
		}
		return true
	case *RecursiveRef:
		return x.Target == b.(*RecursiveRef).Target
	default:
		// Value, ExternalComparable, Opaque, Nothing carry no payload
		// beyond identity and type handle.
		return true
	}
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name ||
			a[i].Getter != b[i].Getter ||
			a[i].Setter != b[i].Setter ||
			a[i].Type != b[i].Type ||
			!Equal(a[i].Desc, b[i].Desc) {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash of the descriptor consistent with Equal:
// descriptors that compare equal hash identically. The hash covers exactly
// the projection Equal compares, so box/unbox fragments never influence it.
func Hash(d Descriptor) uint64 {
	h := fnv.New64a()
	hashDescriptor(h, d)
	return h.Sum64()
}

type hasher interface {
	Write(p []byte) (int, error)
}

func hashDescriptor(h hasher, d Descriptor) {
	if d == nil {
		h.Write([]byte{0xff})
		return
	}
	hashInt(h, int(d.Kind()))
	hashInt(h, d.ID())
	hashTypeRef(h, d.Type())

	switch n := d.(type) {
	case *Primitive:
		hashString(h, n.Default)
		hashTypeRef(h, n.Wrapper)
	case *BoxedPrimitive:
		hashTypeRef(h, n.Wrapper)
	case *Array:
		hashDescriptor(h, n.Elem)
	case *Collection:
		hashDescriptor(h, n.Elem)
	case *Optional:
		hashDescriptor(h, n.Elem)
	case *Either:
		hashDescriptor(h, n.Left)
		hashDescriptor(h, n.Right)
	case *Record:
		hashFields(h, n.Fields)
	case *ConstructorRecord:
		hashString(h, n.Ctor.Name)
		hashString(h, n.Ctor.Package)
		if n.Mutable {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		hashFields(h, n.Fields)
	case *Unsupported:
		for _, e := range n.Errors {
			hashString(h, e)
		}
	case *RecursiveRef:
		hashInt(h, n.Target)
	}
}

func hashFields(h hasher, fields []Field) {
	hashInt(h, len(fields))
	for _, f := range fields {
		hashString(h, f.Name)
		hashString(h, f.Getter.Name)
		hashString(h, f.Getter.Package)
		hashString(h, f.Setter.Name)
		hashString(h, f.Setter.Package)
		hashTypeRef(h, f.Type)
		hashDescriptor(h, f.Desc)
	}
}

func hashTypeRef(h hasher, t TypeRef) {
	hashString(h, t.Name)
	hashString(h, t.Package)
	h.Write([]byte{byte(t.Caps)})
}

func hashString(h hasher, s string) {
	hashInt(h, len(s))
	h.Write([]byte(s))
}

func hashInt(h hasher, v int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}
