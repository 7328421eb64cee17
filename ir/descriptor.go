// Package ir defines the descriptor model produced by type analysis.
// A descriptor classifies one type into a closed set of shapes (primitive,
// collection, record, and so on) and carries enough metadata for downstream
// generators to emit serialization and key-extraction code for that shape.
//
// Descriptors form a graph: composite shapes own their element and field
// descriptors, and structural recursion is represented by a non-expanding
// RecursiveRef node that points back at an ancestor by identity. Graphs are
// built once by a classifier (see the provider package) and are read-only
// afterwards, which makes every query in this package safe for concurrent
// use without locking.
package ir

// Kind identifies the variant of a descriptor.
type Kind int

const (
	KindPrimitive          Kind = iota // built-in scalar
	KindBoxedPrimitive                 // scalar requiring box/unbox code
	KindArray                          // fixed-length homogeneous sequence
	KindCollection                     // variable-length homogeneous sequence
	KindOptional                       // zero-or-one occurrence
	KindEither                         // exactly one of two alternatives
	KindRecord                         // named-field aggregate, getter-based
	KindConstructorRecord              // named-field aggregate with a constructor
	KindValue                          // opaque self-comparable leaf
	KindExternalComparable             // leaf deferring to a foreign comparable interface
	KindOpaque                         // undecomposable but accepted as-is
	KindUnsupported                    // rejected by analysis, carries diagnostics
	KindNothing                        // uninhabited type
	KindRecursiveRef                   // back-reference to an ancestor by identity
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindBoxedPrimitive:
		return "BoxedPrimitive"
	case KindArray:
		return "Array"
	case KindCollection:
		return "Collection"
	case KindOptional:
		return "Optional"
	case KindEither:
		return "Either"
	case KindRecord:
		return "Record"
	case KindConstructorRecord:
		return "ConstructorRecord"
	case KindValue:
		return "Value"
	case KindExternalComparable:
		return "ExternalComparable"
	case KindOpaque:
		return "Opaque"
	case KindUnsupported:
		return "Unsupported"
	case KindNothing:
		return "Nothing"
	case KindRecursiveRef:
		return "RecursiveRef"
	default:
		return "Unknown"
	}
}

// CapSet is a bitmask of capability markers assigned to a type by the
// classifier. The model never computes capabilities itself; it only reads
// the markers when answering CanBeKey.
type CapSet uint8

const (
	// CapOrderedKey marks a type that satisfies the ordered/comparable key
	// contract and may serve directly as a sort key.
	CapOrderedKey CapSet = 1 << iota

	// CapForeign marks a type that implements a foreign comparable
	// interface (interop with pre-existing comparison-capable formats).
	CapForeign

	// CapComparable marks a type that supports generic equality
	// comparison, independent of ordering.
	CapComparable
)

// Has reports whether all capabilities in mask are set.
func (c CapSet) Has(mask CapSet) bool { return c&mask == mask }

// TypeRef is the opaque handle of a described type. Its contents are owned
// by the classifier; the model uses it only for equality, capability checks,
// and diagnostics.
type TypeRef struct {
	// Name is the type's identifier.
	Name string

	// Package is the fully qualified package path. Empty for builtins.
	Package string

	// Caps are the capability markers the classifier assigned to the type.
	Caps CapSet
}

// IsZero returns true if the handle is empty.
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.Package == "" && t.Caps == 0
}

// String returns "package.Name", or just the name for builtins.
func (t TypeRef) String() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// SymbolRef names a getter, setter, or constructor symbol on the described
// type. A zero SymbolRef means the symbol is absent (e.g. direct field
// access with no accessor method).
type SymbolRef struct {
	Name    string
	Package string
}

// IsZero returns true if the symbol reference is empty.
func (s SymbolRef) IsZero() bool { return s.Name == "" && s.Package == "" }

// Fragment builds a code fragment around an expression, e.g. wrapping it in
// a boxing conversion. Fragments are executable payload: they are carried
// for generators and are excluded from Equal and Hash.
type Fragment func(expr string) string

// Descriptor is the sealed interface implemented by every variant.
// Implementations live exclusively in this package; consumers dispatch with
// a type switch over the concrete variants or via Kind.
type Descriptor interface {
	// Kind returns the descriptor's variant for type switching.
	Kind() Kind

	// ID returns the descriptor's identity, unique within one analysis
	// graph. Identity is assigned at construction and never reused.
	ID() int

	// Type returns the handle of the described type.
	Type() TypeRef

	// Ensure only types in this package implement Descriptor.
	sealed()
}

// common carries the identity and type handle shared by all variants.
// Both are fixed at construction; there is no mutation path.
type common struct {
	id  int
	typ TypeRef
}

func (c common) ID() int       { return c.id }
func (c common) Type() TypeRef { return c.typ }
func (c common) sealed()       {}
