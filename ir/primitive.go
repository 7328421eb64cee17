package ir

// Primitive describes a built-in scalar type.
type Primitive struct {
	common

	// Default is the literal used to zero-initialize the type in
	// generated code, e.g. "0" or `""`.
	Default string

	// Wrapper is the handle of the type consulted for key capability.
	// For most scalars this is the type itself.
	Wrapper TypeRef
}

// NewPrimitive returns a Primitive descriptor.
func NewPrimitive(id int, typ TypeRef, def string, wrapper TypeRef) *Primitive {
	return &Primitive{common: common{id, typ}, Default: def, Wrapper: wrapper}
}

// Kind returns KindPrimitive.
func (d *Primitive) Kind() Kind { return KindPrimitive }

// BoxedPrimitive describes a scalar that requires explicit boxing and
// unboxing in generated code (e.g. a scalar reached through a pointer).
//
// Box and Unbox are code-fragment builders and do not participate in
// equality or hashing: only the (id, type, wrapper) projection does.
type BoxedPrimitive struct {
	common

	// Default is the literal used to zero-initialize the unboxed value.
	Default string

	// Wrapper is the handle of the type consulted for key capability.
	Wrapper TypeRef

	// Box wraps an expression of the unboxed type into the boxed form.
	Box Fragment

	// Unbox unwraps an expression of the boxed type.
	Unbox Fragment
}

// NewBoxedPrimitive returns a BoxedPrimitive descriptor.
func NewBoxedPrimitive(id int, typ TypeRef, def string, wrapper TypeRef, box, unbox Fragment) *BoxedPrimitive {
	return &BoxedPrimitive{
		common:  common{id, typ},
		Default: def,
		Wrapper: wrapper,
		Box:     box,
		Unbox:   unbox,
	}
}

// Kind returns KindBoxedPrimitive.
func (d *BoxedPrimitive) Kind() Kind { return KindBoxedPrimitive }
