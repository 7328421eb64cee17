// Package gogen emits Go serialization code from descriptor graphs. It is
// a pure consumer of the descriptor model: it decides what to emit from
// Flatten, which helpers need self-referential calls from RecursiveRefs,
// and validates key paths with Select and CanBeKey.
package gogen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"strings"

	"github.com/serdegen/serdegen/ir"
	"github.com/serdegen/serdegen/sink"
)

// Root pairs a root type name with its descriptor graph.
type Root struct {
	Name string
	Desc ir.Descriptor
}

// KeyPath names a field path to generate a key extractor for.
type KeyPath struct {
	// Root is the root type the path applies to.
	Root string

	// Path is the field path, one segment per record level.
	Path []string
}

// Config controls code emission.
type Config struct {
	// PackageName is the package clause of the generated file. Type names
	// are emitted unqualified, so the file must be placed in the package
	// that declares the analyzed types.
	PackageName string

	// KeyPaths are the key extractors to generate. Invalid paths fail
	// generation with a diagnostic naming the path.
	KeyPaths []KeyPath
}

// GenerateOptions carries the output sink and configuration.
type GenerateOptions struct {
	Sink   sink.OutputSink
	Config Config
}

// Result reports what was generated.
type Result struct {
	// Files maps emitted file names to their byte size.
	Files map[string]int
}

// Generator emits encode/decode functions and key extractors for
// descriptor graphs.
type Generator struct{}

// Generate emits one Go source file covering every root, then writes it to
// the sink as "<package>_serde.go". Roots containing Unsupported nodes fail
// generation: the classifier's diagnostics are surfaced here, when code for
// the rejected node would actually be needed.
func (g *Generator) Generate(ctx context.Context, roots []Root, opts GenerateOptions) (*Result, error) {
	if opts.Config.PackageName == "" {
		return nil, fmt.Errorf("PackageName is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("Sink is required")
	}

	for _, root := range roots {
		if err := rejectUnsupported(root); err != nil {
			return nil, err
		}
	}

	e := &emitter{cfg: opts.Config}
	src, err := e.emitFile(roots)
	if err != nil {
		return nil, err
	}

	name := opts.Config.PackageName + "_serde.go"
	if err := opts.Sink.WriteFile(ctx, name, src); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return &Result{Files: map[string]int{name: len(src)}}, nil
}

// rejectUnsupported surfaces classifier diagnostics for any rejected node
// reachable from the root.
func rejectUnsupported(root Root) error {
	for _, u := range ir.FindByType[*ir.Unsupported](root.Desc) {
		return fmt.Errorf("cannot generate code for %s: type %s is unsupported: %s",
			root.Name, u.Type(), strings.Join(u.Errors, "; "))
	}
	return nil
}

type emitter struct {
	cfg Config
	buf bytes.Buffer
}

func (e *emitter) emitFile(roots []Root) ([]byte, error) {
	fmt.Fprintf(&e.buf, "// Code generated by serdegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&e.buf, "package %s\n\n", e.cfg.PackageName)
	e.buf.WriteString("import (\n\t\"encoding/binary\"\n\t\"encoding/gob\"\n\t\"io\"\n)\n\n")

	for _, root := range roots {
		e.emitRoot(root)
	}

	for _, kp := range e.cfg.KeyPaths {
		root, ok := findRoot(roots, kp.Root)
		if !ok {
			return nil, fmt.Errorf("key path %s: unknown root type %s", pathString(kp), kp.Root)
		}
		if err := e.emitKeyExtractor(root, kp); err != nil {
			return nil, err
		}
	}

	e.emitSupport()

	src, err := format.Source(e.buf.Bytes())
	if err != nil {
		// A parse failure here is an emitter bug, not caller error.
		return nil, fmt.Errorf("generated source does not parse: %w", err)
	}
	return src, nil
}

func findRoot(roots []Root, name string) (Root, bool) {
	for _, r := range roots {
		if r.Name == name {
			return r, true
		}
	}
	return Root{}, false
}

// emitRoot emits Encode<T>/Decode<T> plus one helper pair for the root and
// for every record targeted by a back-reference, so recursive structures
// serialize through self-referential calls instead of inline expansion.
func (e *emitter) emitRoot(root Root) {
	helpers := map[int]bool{root.Desc.ID(): true}
	for _, target := range ir.RecursiveRefs(root.Desc) {
		helpers[target.ID()] = true
	}

	fmt.Fprintf(&e.buf, "// Encode%s writes v in field order with length-prefixed sequences.\n", root.Name)
	fmt.Fprintf(&e.buf, "func Encode%s(w io.Writer, v %s) error {\n", root.Name, typeExpr(root.Desc))
	fmt.Fprintf(&e.buf, "\treturn encode%s%d(w, v)\n}\n\n", root.Name, root.Desc.ID())
	fmt.Fprintf(&e.buf, "// Decode%s reads a value previously written by Encode%s.\n", root.Name, root.Name)
	fmt.Fprintf(&e.buf, "func Decode%s(r io.Reader, v *%s) error {\n", root.Name, typeExpr(root.Desc))
	fmt.Fprintf(&e.buf, "\treturn decode%s%d(r, v)\n}\n\n", root.Name, root.Desc.ID())

	for _, n := range ir.Flatten(root.Desc) {
		if !helpers[n.ID()] {
			continue
		}
		fmt.Fprintf(&e.buf, "func encode%s%d(w io.Writer, v %s) error {\n", root.Name, n.ID(), typeExpr(n))
		e.emitEncodeValue(root.Name, n, "v", 1)
		e.buf.WriteString("\treturn nil\n}\n\n")
		fmt.Fprintf(&e.buf, "func decode%s%d(r io.Reader, v *%s) error {\n", root.Name, n.ID(), typeExpr(n))
		e.emitDecodeValue(root.Name, n, "(*v)", 1)
		e.buf.WriteString("\treturn nil\n}\n\n")
	}
}

func (e *emitter) emitEncodeValue(rootName string, d ir.Descriptor, expr string, depth int) {
	ind := strings.Repeat("\t", depth)
	switch n := d.(type) {
	case *ir.Primitive:
		e.emitScalarEncode(ind, n.Wrapper, expr)
	case *ir.BoxedPrimitive:
		fmt.Fprintf(&e.buf, "%sif %s == nil {\n", ind, expr)
		fmt.Fprintf(&e.buf, "%s\tif err := writeBool(w, false); err != nil {\n%s\t\treturn err\n%s\t}\n", ind, ind, ind)
		fmt.Fprintf(&e.buf, "%s} else {\n", ind)
		fmt.Fprintf(&e.buf, "%s\tif err := writeBool(w, true); err != nil {\n%s\t\treturn err\n%s\t}\n", ind, ind, ind)
		e.emitScalarEncode(ind+"\t", n.Wrapper, n.Unbox(expr))
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Array:
		loop := fmt.Sprintf("e%d", depth)
		fmt.Fprintf(&e.buf, "%sfor _, %s := range %s {\n", ind, loop, expr)
		e.emitEncodeValue(rootName, n.Elem, loop, depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Collection:
		loop := fmt.Sprintf("e%d", depth)
		fmt.Fprintf(&e.buf, "%sif err := binary.Write(w, binary.LittleEndian, uint32(len(%s))); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
		fmt.Fprintf(&e.buf, "%sfor _, %s := range %s {\n", ind, loop, expr)
		e.emitEncodeValue(rootName, n.Elem, loop, depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Optional:
		fmt.Fprintf(&e.buf, "%sif err := writeBool(w, %s != nil); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
		fmt.Fprintf(&e.buf, "%sif %s != nil {\n", ind, expr)
		e.emitEncodeValue(rootName, n.Elem, "(*"+expr+")", depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Record, *ir.ConstructorRecord:
		fields, _ := ir.RecordFields(d)
		for _, f := range fields {
			e.emitEncodeValue(rootName, f.Desc, readExpr(expr, f), depth)
		}
	case *ir.RecursiveRef:
		fmt.Fprintf(&e.buf, "%sif err := encode%s%d(w, %s); err != nil {\n%s\treturn err\n%s}\n", ind, rootName, n.Target, expr, ind, ind)
	default:
		// Value, ExternalComparable, Opaque fall back to the generic
		// gob-backed shims.
		fmt.Fprintf(&e.buf, "%sif err := encodeAny(w, %s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	}
}

func (e *emitter) emitDecodeValue(rootName string, d ir.Descriptor, expr string, depth int) {
	ind := strings.Repeat("\t", depth)
	switch n := d.(type) {
	case *ir.Primitive:
		e.emitScalarDecode(ind, n.Wrapper, expr, depth)
	case *ir.BoxedPrimitive:
		present := fmt.Sprintf("p%d", depth)
		tmp := fmt.Sprintf("b%d", depth)
		fmt.Fprintf(&e.buf, "%svar %s bool\n", ind, present)
		fmt.Fprintf(&e.buf, "%sif err := readBool(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, present, ind, ind)
		fmt.Fprintf(&e.buf, "%sif %s {\n", ind, present)
		fmt.Fprintf(&e.buf, "%s\tvar %s %s = %s\n", ind, tmp, n.Wrapper.Name, n.Default)
		e.emitScalarDecode(ind+"\t", n.Wrapper, tmp, depth+1)
		fmt.Fprintf(&e.buf, "%s\t%s = %s\n", ind, expr, n.Box(tmp))
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Array:
		idx := fmt.Sprintf("i%d", depth)
		fmt.Fprintf(&e.buf, "%sfor %s := range %s {\n", ind, idx, expr)
		e.emitDecodeValue(rootName, n.Elem, fmt.Sprintf("%s[%s]", expr, idx), depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Collection:
		length := fmt.Sprintf("n%d", depth)
		idx := fmt.Sprintf("i%d", depth)
		fmt.Fprintf(&e.buf, "%svar %s uint32\n", ind, length)
		fmt.Fprintf(&e.buf, "%sif err := binary.Read(r, binary.LittleEndian, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, length, ind, ind)
		fmt.Fprintf(&e.buf, "%s%s = make(%s, %s)\n", ind, expr, typeExpr(d), length)
		fmt.Fprintf(&e.buf, "%sfor %s := range %s {\n", ind, idx, expr)
		e.emitDecodeValue(rootName, n.Elem, fmt.Sprintf("%s[%s]", expr, idx), depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Optional:
		present := fmt.Sprintf("p%d", depth)
		fmt.Fprintf(&e.buf, "%svar %s bool\n", ind, present)
		fmt.Fprintf(&e.buf, "%sif err := readBool(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, present, ind, ind)
		fmt.Fprintf(&e.buf, "%sif %s {\n", ind, present)
		fmt.Fprintf(&e.buf, "%s\t%s = new(%s)\n", ind, expr, typeExpr(n.Elem))
		e.emitDecodeValue(rootName, n.Elem, "(*"+expr+")", depth+1)
		fmt.Fprintf(&e.buf, "%s}\n", ind)
	case *ir.Record, *ir.ConstructorRecord:
		e.emitDecodeRecord(rootName, d, expr, depth)
	case *ir.RecursiveRef:
		fmt.Fprintf(&e.buf, "%sif err := decode%s%d(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, rootName, n.Target, expr, ind, ind)
	default:
		fmt.Fprintf(&e.buf, "%sif err := decodeAny(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	}
}

// emitDecodeRecord fills a record value field by field. Accessor-backed
// fields decode into a temporary and go through the setter; fields with a
// getter but no setter cannot be restored and are skipped.
func (e *emitter) emitDecodeRecord(rootName string, d ir.Descriptor, expr string, depth int) {
	ind := strings.Repeat("\t", depth)
	fields, _ := ir.RecordFields(d)
	for i, f := range fields {
		if f.Getter.IsZero() {
			e.emitDecodeValue(rootName, f.Desc, expr+"."+f.Name, depth)
			continue
		}
		if f.Setter.IsZero() {
			fmt.Fprintf(&e.buf, "%s// %s has no setter and keeps its zero value.\n", ind, f.Name)
			continue
		}
		tmp := fmt.Sprintf("f%d_%d", depth, i)
		fmt.Fprintf(&e.buf, "%svar %s %s\n", ind, tmp, f.Type.Name)
		e.emitDecodeValue(rootName, f.Desc, tmp, depth)
		fmt.Fprintf(&e.buf, "%s%s.%s(%s)\n", ind, expr, f.Setter.Name, tmp)
	}
}

func (e *emitter) emitScalarEncode(ind string, wrapper ir.TypeRef, expr string) {
	switch wrapper.Name {
	case "string":
		fmt.Fprintf(&e.buf, "%sif err := writeString(w, %s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	case "bool":
		fmt.Fprintf(&e.buf, "%sif err := writeBool(w, %s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	case "int", "uint":
		// Platform-width integers widen to 64 bits on the wire.
		fmt.Fprintf(&e.buf, "%sif err := binary.Write(w, binary.LittleEndian, int64(%s)); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	default:
		fmt.Fprintf(&e.buf, "%sif err := binary.Write(w, binary.LittleEndian, %s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	}
}

func (e *emitter) emitScalarDecode(ind string, wrapper ir.TypeRef, expr string, depth int) {
	switch wrapper.Name {
	case "string":
		fmt.Fprintf(&e.buf, "%sif err := readString(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	case "bool":
		fmt.Fprintf(&e.buf, "%sif err := readBool(r, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	case "int", "uint":
		wide := fmt.Sprintf("w%d", depth)
		fmt.Fprintf(&e.buf, "%svar %s int64\n", ind, wide)
		fmt.Fprintf(&e.buf, "%sif err := binary.Read(r, binary.LittleEndian, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, wide, ind, ind)
		fmt.Fprintf(&e.buf, "%s%s = %s(%s)\n", ind, expr, wrapper.Name, wide)
	default:
		fmt.Fprintf(&e.buf, "%sif err := binary.Read(r, binary.LittleEndian, &%s); err != nil {\n%s\treturn err\n%s}\n", ind, expr, ind, ind)
	}
}

// emitKeyExtractor validates the key path against the descriptor model and
// emits an accessor returning the addressed value.
func (e *emitter) emitKeyExtractor(root Root, kp KeyPath) error {
	if len(kp.Path) > 0 {
		if sel := ir.Select(root.Desc, kp.Path); len(sel) == 1 && sel[0] == nil {
			return fmt.Errorf("key path %s: no such field", pathString(kp))
		}
	}

	// The extractor returns the addressed field's own value, so its type
	// comes from the field descriptor reached by walking the path, not
	// from Select's leaf expansion: a path ending on a record keys by the
	// whole record value. A bare root path keys the whole root.
	leaf := root.Desc
	expr := "v"
	for _, seg := range kp.Path {
		fields, _ := ir.RecordFields(leaf)
		for _, f := range fields {
			if f.Name == seg {
				expr = readExpr(expr, f)
				leaf = f.Desc
				break
			}
		}
	}

	if !ir.CanBeKey(leaf) {
		return fmt.Errorf("key path %s: type %s cannot be used as a key", pathString(kp), leaf.Type())
	}

	name := root.Name + "Key"
	if len(kp.Path) > 0 {
		name += strings.Join(kp.Path, "")
	}
	fmt.Fprintf(&e.buf, "// %s extracts the %s key of v.\n", name, pathString(kp))
	fmt.Fprintf(&e.buf, "func %s(v %s) %s {\n\treturn %s\n}\n\n",
		name, typeExpr(root.Desc), typeExpr(leaf), expr)
	return nil
}

// emitSupport writes the shared runtime shims the generated functions call
// into. They are emitted into the same file so the output stands alone.
func (e *emitter) emitSupport() {
	e.buf.WriteString(`func writeBool(w io.Writer, b bool) error {
	return binary.Write(w, binary.LittleEndian, b)
}

func readBool(r io.Reader, b *bool) error {
	return binary.Read(r, binary.LittleEndian, b)
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader, s *string) error {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	*s = string(buf)
	return nil
}

func encodeAny(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

func decodeAny(r io.Reader, v any) error {
	return gob.NewDecoder(r).Decode(v)
}
`)
}

func pathString(kp KeyPath) string {
	if len(kp.Path) == 0 {
		return kp.Root
	}
	return kp.Root + "." + strings.Join(kp.Path, ".")
}

// readExpr builds the read expression for a field: direct selection for
// plain fields, a getter call when the field is accessor-backed.
func readExpr(base string, f ir.Field) string {
	if !f.Getter.IsZero() {
		return base + "." + f.Getter.Name + "()"
	}
	return base + "." + f.Name
}

// typeExpr renders the Go type expression for a descriptor. Type handles
// capture the source-level spelling at classification time, so the name is
// usable verbatim only in a file generated into the package that declares
// the type; see Config.PackageName.
func typeExpr(d ir.Descriptor) string {
	return d.Type().Name
}
