package ir

// Field describes a single named field of a record-shaped descriptor.
// Fields are exclusively owned by their record; a field's Desc is owned by
// the field unless it is a RecursiveRef, which is a non-owning relation
// back into the graph by identity.
type Field struct {
	// Name is the field's declared name.
	Name string

	// Getter and Setter reference accessor symbols. Either may be zero:
	// plain fields are read and written directly.
	Getter SymbolRef
	Setter SymbolRef

	// Type is the field's own type handle.
	Type TypeRef

	// Desc describes the field's type.
	Desc Descriptor
}

// Record describes a named-field aggregate accessed through its fields or
// getters. Field order is significant and stable: it reflects declaration
// order and is the order used for serialization layout and equality.
type Record struct {
	common

	Fields []Field
}

// NewRecord returns a plain Record descriptor.
func NewRecord(id int, typ TypeRef, fields []Field) *Record {
	return &Record{common: common{id, typ}, Fields: fields}
}

// Kind returns KindRecord.
func (d *Record) Kind() Kind { return KindRecord }

// ConstructorRecord describes a named-field aggregate that additionally
// knows how to be instantiated.
type ConstructorRecord struct {
	common

	Fields []Field

	// Ctor references the constructing symbol.
	Ctor SymbolRef

	// Mutable reports whether fields can be assigned after construction.
	// Immutable records must be built through Ctor in generated code.
	Mutable bool
}

// NewConstructorRecord returns a ConstructorRecord descriptor.
func NewConstructorRecord(id int, typ TypeRef, fields []Field, ctor SymbolRef, mutable bool) *ConstructorRecord {
	return &ConstructorRecord{common: common{id, typ}, Fields: fields, Ctor: ctor, Mutable: mutable}
}

// Kind returns KindConstructorRecord.
func (d *ConstructorRecord) Kind() Kind { return KindConstructorRecord }

// RecordFields returns the field sequence of a record-shaped descriptor.
// The second result is false for every other variant.
func RecordFields(d Descriptor) ([]Field, bool) {
	switch r := d.(type) {
	case *Record:
		return r.Fields, true
	case *ConstructorRecord:
		return r.Fields, true
	default:
		return nil, false
	}
}
