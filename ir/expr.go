package ir

// Array describes a fixed-length homogeneous sequence.
type Array struct {
	common

	// Elem is the element descriptor, exclusively owned by this node.
	Elem Descriptor
}

// NewArray returns an Array descriptor.
func NewArray(id int, typ TypeRef, elem Descriptor) *Array {
	return &Array{common: common{id, typ}, Elem: elem}
}

// Kind returns KindArray.
func (d *Array) Kind() Kind { return KindArray }

// Collection describes a variable-length homogeneous sequence. Collections
// may nest: the element may itself be a Collection.
type Collection struct {
	common

	// Elem is the element descriptor, exclusively owned by this node.
	Elem Descriptor
}

// NewCollection returns a Collection descriptor.
func NewCollection(id int, typ TypeRef, elem Descriptor) *Collection {
	return &Collection{common: common{id, typ}, Elem: elem}
}

// Kind returns KindCollection.
func (d *Collection) Kind() Kind { return KindCollection }

// Optional describes a zero-or-one occurrence of a value.
type Optional struct {
	common

	// Elem is the element descriptor, exclusively owned by this node.
	Elem Descriptor
}

// NewOptional returns an Optional descriptor.
func NewOptional(id int, typ TypeRef, elem Descriptor) *Optional {
	return &Optional{common: common{id, typ}, Elem: elem}
}

// Kind returns KindOptional.
func (d *Optional) Kind() Kind { return KindOptional }

// Either describes a disjoint union of exactly two alternative shapes.
type Either struct {
	common

	Left  Descriptor
	Right Descriptor
}

// NewEither returns an Either descriptor.
func NewEither(id int, typ TypeRef, left, right Descriptor) *Either {
	return &Either{common: common{id, typ}, Left: left, Right: right}
}

// Kind returns KindEither.
func (d *Either) Kind() Kind { return KindEither }

// Value describes an opaque leaf type that knows how to compare itself.
type Value struct {
	common
}

// NewValue returns a Value descriptor.
func NewValue(id int, typ TypeRef) *Value {
	return &Value{common: common{id, typ}}
}

// Kind returns KindValue.
func (d *Value) Kind() Kind { return KindValue }

// ExternalComparable describes a leaf type that delegates comparability to
// a foreign comparable interface. It exists for interop with container
// formats that bring their own comparison contract.
type ExternalComparable struct {
	common
}

// NewExternalComparable returns an ExternalComparable descriptor.
func NewExternalComparable(id int, typ TypeRef) *ExternalComparable {
	return &ExternalComparable{common: common{id, typ}}
}

// Kind returns KindExternalComparable.
func (d *ExternalComparable) Kind() Kind { return KindExternalComparable }

// Opaque describes a type the analysis could not decompose further but
// accepts as-is. Generators fall back to a generic encoding for it.
type Opaque struct {
	common
}

// NewOpaque returns an Opaque descriptor.
func NewOpaque(id int, typ TypeRef) *Opaque {
	return &Opaque{common: common{id, typ}}
}

// Kind returns KindOpaque.
func (d *Opaque) Kind() Kind { return KindOpaque }

// Unsupported describes a type the analysis rejected. It is the model's
// only failure representation: construction never fails, the rejection is
// carried as data and surfaced when a generator reaches the node.
type Unsupported struct {
	common

	// Errors holds human-readable diagnostic reasons, at least one.
	Errors []string
}

// NewUnsupported returns an Unsupported descriptor.
func NewUnsupported(id int, typ TypeRef, errs ...string) *Unsupported {
	return &Unsupported{common: common{id, typ}, Errors: errs}
}

// Kind returns KindUnsupported.
func (d *Unsupported) Kind() Kind { return KindUnsupported }

// Nothing describes the uninhabited bottom type.
type Nothing struct {
	common
}

// NewNothing returns a Nothing descriptor.
func NewNothing(id int, typ TypeRef) *Nothing {
	return &Nothing{common: common{id, typ}}
}

// Kind returns KindNothing.
func (d *Nothing) Kind() Kind { return KindNothing }

// RecursiveRef marks that the type at this position is structurally
// identical to an ancestor descriptor. It stores the ancestor's identity
// rather than the ancestor itself, which is what keeps the graph acyclic
// in ownership terms and keeps Flatten finite.
type RecursiveRef struct {
	common

	// Target is the identity of the ancestor this reference points at.
	Target int
}

// NewRecursiveRef returns a RecursiveRef descriptor.
func NewRecursiveRef(id int, typ TypeRef, target int) *RecursiveRef {
	return &RecursiveRef{common: common{id, typ}, Target: target}
}

// Kind returns KindRecursiveRef.
func (d *RecursiveRef) Kind() Kind { return KindRecursiveRef }
