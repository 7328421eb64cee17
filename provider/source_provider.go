// Package provider implements the classifier that inspects Go types and
// produces descriptor graphs. It is the producer side of the descriptor
// model's contract: it assigns fresh identities, decides each type's
// variant, and emits a RecursiveRef whenever it re-encounters a type that
// is still being classified higher in the descent.
package provider

import (
	"context"
	"fmt"
	"go/types"
	"strings"

	"github.com/serdegen/serdegen/ir"
	"golang.org/x/tools/go/packages"
)

// SourceProvider classifies types by analyzing Go source code.
type SourceProvider struct{}

// SourceInputOptions configures source-based classification.
type SourceInputOptions struct {
	// Packages are the Go package paths to load.
	Packages []string

	// RootTypes are the names of the types to analyze. Each root gets its
	// own descriptor graph with its own identity space.
	RootTypes []string
}

// PackageInfo describes the package the roots were found in.
type PackageInfo struct {
	Path string
	Name string
}

// Root pairs a root type name with its descriptor graph.
type Root struct {
	Name string
	Desc ir.Descriptor
}

// Warning is a non-fatal classification note, e.g. a type that fell back
// to a generic encoding.
type Warning struct {
	Code     string
	Message  string
	TypeName string
}

// Graph is the result of one analysis invocation.
type Graph struct {
	Package  PackageInfo
	Roots    []Root
	Warnings []Warning
}

// FindRoot looks up a root graph by type name. Returns nil if not found.
func (g *Graph) FindRoot(name string) ir.Descriptor {
	for _, r := range g.Roots {
		if r.Name == name {
			return r.Desc
		}
	}
	return nil
}

// BuildGraph loads the packages and classifies every root type. Types the
// classifier cannot decompose become Unsupported descriptors carrying
// diagnostics; BuildGraph itself fails only when loading or root lookup
// fails.
func (p *SourceProvider) BuildGraph(ctx context.Context, opts SourceInputOptions) (*Graph, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	graph := &Graph{
		Package: PackageInfo{Path: pkgs[0].PkgPath, Name: pkgs[0].Name},
	}

	for _, rootName := range opts.RootTypes {
		obj := lookupType(pkgs, rootName)
		if obj == nil {
			return nil, fmt.Errorf("type %s not found in any package", rootName)
		}

		// Each root gets a fresh identity space and visited set.
		c := &classifier{
			graph:  graph,
			active: make(map[types.Type]int),
		}
		graph.Roots = append(graph.Roots, Root{
			Name: rootName,
			Desc: c.classify(obj.Type()),
		})
	}

	return graph, nil
}

func lookupType(pkgs []*packages.Package, name string) *types.TypeName {
	for _, pkg := range pkgs {
		obj := pkg.Types.Scope().Lookup(name)
		if obj == nil {
			continue
		}
		if tn, ok := obj.(*types.TypeName); ok {
			return tn
		}
	}
	return nil
}

// classifier walks one root type and assigns identities in pre-order.
type classifier struct {
	graph  *Graph
	nextID int

	// active maps types currently being classified to the identity
	// reserved for them. Re-encountering an active type is the signal to
	// emit a RecursiveRef instead of descending again.
	active map[types.Type]int
}

func (c *classifier) newID() int {
	c.nextID++
	return c.nextID
}

// classify produces the descriptor for a type. It never fails: types the
// classifier cannot handle become Unsupported descriptors.
func (c *classifier) classify(t types.Type) ir.Descriptor {
	if target, ok := c.active[t]; ok {
		return ir.NewRecursiveRef(c.newID(), c.typeRef(t), target)
	}

	switch typ := t.(type) {
	case *types.Basic:
		return c.classifyBasic(typ)

	case *types.Pointer:
		return c.classifyPointer(typ)

	case *types.Slice:
		id := c.newID()
		return ir.NewCollection(id, c.typeRef(t), c.classify(typ.Elem()))

	case *types.Array:
		id := c.newID()
		return ir.NewArray(id, c.typeRef(t), c.classify(typ.Elem()))

	case *types.Map:
		c.warn("GENERIC_FALLBACK", fmt.Sprintf("map type %s uses the generic encoding", t), t)
		return ir.NewOpaque(c.newID(), c.typeRef(t))

	case *types.Interface:
		c.warn("GENERIC_FALLBACK", fmt.Sprintf("interface type %s uses the generic encoding", t), t)
		return ir.NewOpaque(c.newID(), c.typeRef(t))

	case *types.Chan:
		return ir.NewUnsupported(c.newID(), c.typeRef(t), "channel types cannot be serialized")

	case *types.Signature:
		return ir.NewUnsupported(c.newID(), c.typeRef(t), "function types cannot be serialized")

	case *types.Named:
		return c.classifyNamed(typ)

	case *types.Struct:
		return c.classifyStruct(t, typ, c.typeRef(t))

	default:
		return ir.NewUnsupported(c.newID(), c.typeRef(t),
			fmt.Sprintf("cannot classify type %s", t))
	}
}

func (c *classifier) classifyBasic(basic *types.Basic) ir.Descriptor {
	ref := c.typeRef(basic)
	def, ok := defaultLiteral(basic)
	if !ok {
		return ir.NewUnsupported(c.newID(), ref,
			fmt.Sprintf("basic type %s has no serializable representation", basic))
	}
	return ir.NewPrimitive(c.newID(), ref, def, ref)
}

// classifyPointer maps a pointer to a scalar to a boxed primitive with
// box/unbox fragments, and a pointer to anything else to an optional
// occurrence of the pointee.
func (c *classifier) classifyPointer(ptr *types.Pointer) ir.Descriptor {
	elem := ptr.Elem()
	if basic, ok := elem.Underlying().(*types.Basic); ok {
		wrapper := c.typeRef(elem)
		def, defOK := defaultLiteral(basic)
		if !defOK {
			return ir.NewUnsupported(c.newID(), c.typeRef(ptr),
				fmt.Sprintf("basic type %s has no serializable representation", basic))
		}
		return ir.NewBoxedPrimitive(c.newID(), c.typeRef(ptr), def, wrapper,
			func(expr string) string { return "&(" + expr + ")" },
			func(expr string) string { return "*(" + expr + ")" })
	}
	id := c.newID()
	return ir.NewOptional(id, c.typeRef(ptr), c.classify(elem))
}

func (c *classifier) classifyNamed(named *types.Named) ir.Descriptor {
	ref := c.typeRef(named)

	// Types bringing their own comparison contract take precedence over
	// structural decomposition.
	if hasCompareMethod(named) {
		return ir.NewExternalComparable(c.newID(), ref)
	}
	if hasTextMarshaler(named) {
		return ir.NewValue(c.newID(), ref)
	}

	switch under := named.Underlying().(type) {
	case *types.Struct:
		return c.classifyStruct(named, under, ref)
	case *types.Basic:
		def, ok := defaultLiteral(under)
		if !ok {
			return ir.NewUnsupported(c.newID(), ref,
				fmt.Sprintf("basic type %s has no serializable representation", under))
		}
		return ir.NewPrimitive(c.newID(), ref, def, ref)
	default:
		// Defined types over slices, maps, pointers and so on classify
		// by their underlying shape but keep the named handle.
		return c.classifyUnderlying(named, ref)
	}
}

// classifyUnderlying descends into a named type's underlying shape while
// keeping the named type active, so self-reference through the underlying
// shape still resolves to a back-reference.
func (c *classifier) classifyUnderlying(named *types.Named, ref ir.TypeRef) ir.Descriptor {
	switch under := named.Underlying().(type) {
	case *types.Slice:
		id := c.newID()
		c.active[named] = id
		defer delete(c.active, named)
		return ir.NewCollection(id, ref, c.classify(under.Elem()))
	case *types.Array:
		id := c.newID()
		c.active[named] = id
		defer delete(c.active, named)
		return ir.NewArray(id, ref, c.classify(under.Elem()))
	case *types.Pointer:
		id := c.newID()
		c.active[named] = id
		defer delete(c.active, named)
		return ir.NewOptional(id, ref, c.classify(under.Elem()))
	case *types.Map:
		c.warn("GENERIC_FALLBACK", fmt.Sprintf("map type %s uses the generic encoding", named), named)
		return ir.NewOpaque(c.newID(), ref)
	case *types.Interface:
		c.warn("GENERIC_FALLBACK", fmt.Sprintf("interface type %s uses the generic encoding", named), named)
		return ir.NewOpaque(c.newID(), ref)
	case *types.Chan:
		return ir.NewUnsupported(c.newID(), ref, "channel types cannot be serialized")
	case *types.Signature:
		return ir.NewUnsupported(c.newID(), ref, "function types cannot be serialized")
	default:
		return ir.NewUnsupported(c.newID(), ref,
			fmt.Sprintf("cannot classify type %s", named))
	}
}

// classifyStruct builds a record-shaped descriptor. The record's identity
// is reserved before fields are classified so that fields re-entering the
// struct resolve against it.
func (c *classifier) classifyStruct(key types.Type, st *types.Struct, ref ir.TypeRef) ir.Descriptor {
	id := c.newID()
	c.active[key] = id
	defer delete(c.active, key)

	var (
		fields      []ir.Field
		diagnostics []string
		exported    = true
	)

	named, _ := key.(*types.Named)

	for i := 0; i < st.NumFields(); i++ {
		fv := st.Field(i)
		field := ir.Field{
			Name: fv.Name(),
			Type: c.typeRef(fv.Type()),
		}

		if !fv.Exported() {
			exported = false
			getter, setter := accessorsFor(named, fv)
			if getter.IsZero() {
				diagnostics = append(diagnostics,
					fmt.Sprintf("field %s is unexported and has no accessor", fv.Name()))
				continue
			}
			field.Getter = getter
			field.Setter = setter
		}

		field.Desc = c.classify(fv.Type())
		fields = append(fields, field)
	}

	if len(diagnostics) > 0 {
		return ir.NewUnsupported(id, ref, diagnostics...)
	}

	if exported {
		// Fully exported structs are constructible with a composite
		// literal and freely mutable.
		return ir.NewConstructorRecord(id, ref, fields,
			ir.SymbolRef{Name: ref.Name, Package: ref.Package}, true)
	}
	return ir.NewRecord(id, ref, fields)
}

func (c *classifier) warn(code, message string, t types.Type) {
	c.graph.Warnings = append(c.graph.Warnings, Warning{
		Code:     code,
		Message:  message,
		TypeName: t.String(),
	})
}

// typeRef builds the opaque handle for a type, including the capability
// markers the descriptor model reads when answering CanBeKey.
func (c *classifier) typeRef(t types.Type) ir.TypeRef {
	ref := ir.TypeRef{Caps: capsFor(t)}

	switch typ := t.(type) {
	case *types.Named:
		obj := typ.Obj()
		ref.Name = obj.Name()
		if obj.Pkg() != nil {
			ref.Package = obj.Pkg().Path()
		}
	case *types.Basic:
		ref.Name = typ.Name()
	default:
		ref.Name = t.String()
	}
	return ref
}

// capsFor computes the capability markers for a type: generic
// comparability per the language rules, ordered-key capability for types
// whose underlying kind admits ordering, and the foreign-comparable marker
// for types with their own Compare method.
func capsFor(t types.Type) ir.CapSet {
	var caps ir.CapSet
	if types.Comparable(t) {
		caps |= ir.CapComparable
	}
	if basic, ok := t.Underlying().(*types.Basic); ok {
		if basic.Info()&(types.IsOrdered) != 0 {
			caps |= ir.CapOrderedKey
		}
	}
	if named, ok := t.(*types.Named); ok && hasCompareMethod(named) {
		caps |= ir.CapForeign
	}
	return caps
}

// defaultLiteral returns the zero-value literal for a basic kind. The
// second result is false for kinds with no serializable representation
// (unsafe pointers and untyped kinds).
func defaultLiteral(basic *types.Basic) (string, bool) {
	info := basic.Info()
	switch {
	case info&types.IsBoolean != 0:
		return "false", true
	case info&types.IsNumeric != 0:
		return "0", true
	case info&types.IsString != 0:
		return `""`, true
	default:
		return "", false
	}
}

// hasCompareMethod reports whether the named type implements the foreign
// comparison contract: a Compare method taking one argument and returning
// an int ordering.
func hasCompareMethod(named *types.Named) bool {
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if m.Name() != "Compare" {
			continue
		}
		sig, ok := m.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
			continue
		}
		if basic, ok := sig.Results().At(0).Type().(*types.Basic); ok && basic.Kind() == types.Int {
			return true
		}
	}
	return false
}

// hasTextMarshaler reports whether the type (or its pointer) implements
// both encoding.TextMarshaler and encoding.TextUnmarshaler, marking it a
// self-serializing value type.
func hasTextMarshaler(named *types.Named) bool {
	var marshal, unmarshal bool
	check := func(m *types.Func) {
		switch m.Name() {
		case "MarshalText":
			sig := m.Type().(*types.Signature)
			if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
				marshal = true
			}
		case "UnmarshalText":
			sig := m.Type().(*types.Signature)
			if sig.Params().Len() == 1 && sig.Results().Len() == 1 {
				unmarshal = true
			}
		}
	}
	for i := 0; i < named.NumMethods(); i++ {
		check(named.Method(i))
	}
	return marshal && unmarshal
}

// accessorsFor finds the getter/setter pair for an unexported struct
// field: a niladic method named after the field returning its type, and
// optionally a Set<Name> method taking it.
func accessorsFor(named *types.Named, field *types.Var) (getter, setter ir.SymbolRef) {
	if named == nil {
		return ir.SymbolRef{}, ir.SymbolRef{}
	}
	pkgPath := ""
	if named.Obj().Pkg() != nil {
		pkgPath = named.Obj().Pkg().Path()
	}

	getterName := strings.ToUpper(field.Name()[:1]) + field.Name()[1:]
	setterName := "Set" + getterName

	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		sig, ok := m.Type().(*types.Signature)
		if !ok {
			continue
		}
		switch m.Name() {
		case getterName:
			if sig.Params().Len() == 0 && sig.Results().Len() == 1 &&
				types.Identical(sig.Results().At(0).Type(), field.Type()) {
				getter = ir.SymbolRef{Name: getterName, Package: pkgPath}
			}
		case setterName:
			if sig.Params().Len() == 1 &&
				types.Identical(sig.Params().At(0).Type(), field.Type()) {
				setter = ir.SymbolRef{Name: setterName, Package: pkgPath}
			}
		}
	}
	return getter, setter
}
