package gogen

import (
	"context"
	"strings"
	"testing"

	"github.com/serdegen/serdegen/ir"
	"github.com/serdegen/serdegen/sink"
)

func intRef() ir.TypeRef {
	return ir.TypeRef{Name: "int64", Caps: ir.CapOrderedKey | ir.CapComparable}
}

func stringRef() ir.TypeRef {
	return ir.TypeRef{Name: "string", Caps: ir.CapOrderedKey | ir.CapComparable}
}

// userGraph describes
//
//	type User struct { ID int64; Name string; Tags []string }
func userGraph() Root {
	return Root{
		Name: "User",
		Desc: ir.NewConstructorRecord(1, ir.TypeRef{Name: "User", Package: "example.com/api"}, []ir.Field{
			{Name: "ID", Type: intRef(), Desc: ir.NewPrimitive(2, intRef(), "0", intRef())},
			{Name: "Name", Type: stringRef(), Desc: ir.NewPrimitive(3, stringRef(), `""`, stringRef())},
			{Name: "Tags", Type: ir.TypeRef{Name: "[]string"}, Desc: ir.NewCollection(4, ir.TypeRef{Name: "[]string"},
				ir.NewPrimitive(5, stringRef(), `""`, stringRef()))},
		}, ir.SymbolRef{Name: "User", Package: "example.com/api"}, true),
	}
}

// nodeGraph describes the self-referential
//
//	type Node struct { Value int64; Next *Node }
func nodeGraph() Root {
	nodeRef := ir.TypeRef{Name: "Node", Package: "example.com/list"}
	return Root{
		Name: "Node",
		Desc: ir.NewConstructorRecord(1, nodeRef, []ir.Field{
			{Name: "Value", Type: intRef(), Desc: ir.NewPrimitive(2, intRef(), "0", intRef())},
			{Name: "Next", Type: ir.TypeRef{Name: "*Node"}, Desc: ir.NewOptional(3, ir.TypeRef{Name: "*Node"},
				ir.NewRecursiveRef(4, nodeRef, 1))},
		}, ir.SymbolRef{Name: "Node"}, true),
	}
}

func generate(t *testing.T, roots []Root, cfg Config) string {
	t.Helper()

	memSink := sink.NewMemorySink()
	gen := &Generator{}
	if cfg.PackageName == "" {
		cfg.PackageName = "api"
	}
	_, err := gen.Generate(context.Background(), roots, GenerateOptions{Sink: memSink, Config: cfg})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	content := memSink.Get(cfg.PackageName + "_serde.go")
	if content == nil {
		t.Fatal("generated file not written to sink")
	}
	return string(content)
}

func TestGenerator_SimpleRecord(t *testing.T) {
	got := generate(t, []Root{userGraph()}, Config{})

	want := []string{
		"package api",
		"func EncodeUser(w io.Writer, v User) error {",
		"func DecodeUser(r io.Reader, v *User) error {",
		"writeString(w, v.Name)",
		"uint32(len(v.Tags))",
		"Code generated by serdegen. DO NOT EDIT.",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("generated output missing %q\n%s", w, got)
		}
	}
}

func TestGenerator_RecursiveRecordUsesHelperCalls(t *testing.T) {
	got := generate(t, []Root{nodeGraph()}, Config{PackageName: "list"})

	// The back-reference serializes through a call to the target's
	// helper, never by inline expansion.
	want := []string{
		"func encodeNode1(w io.Writer, v Node) error {",
		"encodeNode1(w, (*v.Next))",
		"decodeNode1(r, &(*(*v).Next))",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("generated output missing %q\n%s", w, got)
		}
	}
}

func TestGenerator_KeyExtractor(t *testing.T) {
	got := generate(t, []Root{userGraph()}, Config{
		KeyPaths: []KeyPath{{Root: "User", Path: []string{"ID"}}},
	})

	if !strings.Contains(got, "func UserKeyID(v User) int64 {") {
		t.Errorf("missing key extractor:\n%s", got)
	}
	if !strings.Contains(got, "return v.ID") {
		t.Errorf("key extractor should return the addressed field:\n%s", got)
	}
}

// A key path ending on a record-shaped field extracts the record value
// itself. The return type must be the field's own type, not the type of the
// record's single leaf.
func TestGenerator_KeyExtractorRecordField(t *testing.T) {
	customerRef := ir.TypeRef{Name: "Customer", Package: "example.com/api"}
	customer := ir.NewConstructorRecord(2, customerRef, []ir.Field{
		{Name: "ID", Type: intRef(), Desc: ir.NewPrimitive(3, intRef(), "0", intRef())},
	}, ir.SymbolRef{Name: "Customer"}, true)
	order := Root{
		Name: "Order",
		Desc: ir.NewConstructorRecord(1, ir.TypeRef{Name: "Order", Package: "example.com/api"}, []ir.Field{
			{Name: "Customer", Type: customerRef, Desc: customer},
		}, ir.SymbolRef{Name: "Order"}, true),
	}

	got := generate(t, []Root{order}, Config{
		KeyPaths: []KeyPath{{Root: "Order", Path: []string{"Customer"}}},
	})

	if !strings.Contains(got, "func OrderKeyCustomer(v Order) Customer {") {
		t.Errorf("extractor should return the record type:\n%s", got)
	}
	if !strings.Contains(got, "return v.Customer") {
		t.Errorf("extractor should return the addressed field:\n%s", got)
	}
	if strings.Contains(got, "func OrderKeyCustomer(v Order) int64 {") {
		t.Errorf("extractor must not take its return type from the record's leaf:\n%s", got)
	}
}

func TestGenerator_KeyPathUnknownField(t *testing.T) {
	gen := &Generator{}
	_, err := gen.Generate(context.Background(), []Root{userGraph()}, GenerateOptions{
		Sink: sink.NewMemorySink(),
		Config: Config{
			PackageName: "api",
			KeyPaths:    []KeyPath{{Root: "User", Path: []string{"Nope"}}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "no such field") {
		t.Fatalf("expected unresolved path error, got %v", err)
	}
}

func TestGenerator_KeyPathNotEligible(t *testing.T) {
	gen := &Generator{}
	_, err := gen.Generate(context.Background(), []Root{userGraph()}, GenerateOptions{
		Sink: sink.NewMemorySink(),
		Config: Config{
			PackageName: "api",
			KeyPaths:    []KeyPath{{Root: "User", Path: []string{"Tags"}}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "cannot be used as a key") {
		t.Fatalf("expected key eligibility error, got %v", err)
	}
}

func TestGenerator_UnsupportedRootFails(t *testing.T) {
	bad := Root{
		Name: "Bad",
		Desc: ir.NewConstructorRecord(1, ir.TypeRef{Name: "Bad"}, []ir.Field{
			{Name: "C", Type: ir.TypeRef{Name: "chan int"}, Desc: ir.NewUnsupported(2, ir.TypeRef{Name: "chan int"}, "channel types cannot be serialized")},
		}, ir.SymbolRef{Name: "Bad"}, true),
	}

	gen := &Generator{}
	_, err := gen.Generate(context.Background(), []Root{bad}, GenerateOptions{
		Sink:   sink.NewMemorySink(),
		Config: Config{PackageName: "api"},
	})
	if err == nil || !strings.Contains(err.Error(), "channel types cannot be serialized") {
		t.Fatalf("expected unsupported diagnostics to surface, got %v", err)
	}
}

func TestGenerator_AccessorRecord(t *testing.T) {
	balRef := intRef()
	root := Root{
		Name: "Account",
		Desc: ir.NewRecord(1, ir.TypeRef{Name: "Account"}, []ir.Field{
			{
				Name:   "balance",
				Getter: ir.SymbolRef{Name: "Balance"},
				Setter: ir.SymbolRef{Name: "SetBalance"},
				Type:   balRef,
				Desc:   ir.NewPrimitive(2, balRef, "0", balRef),
			},
		}),
	}

	got := generate(t, []Root{root}, Config{})
	if !strings.Contains(got, "v.Balance()") {
		t.Errorf("encode should read through the getter:\n%s", got)
	}
	if !strings.Contains(got, ".SetBalance(") {
		t.Errorf("decode should write through the setter:\n%s", got)
	}
}

func TestGenerator_MissingPackageName(t *testing.T) {
	gen := &Generator{}
	_, err := gen.Generate(context.Background(), nil, GenerateOptions{Sink: sink.NewMemorySink()})
	if err == nil {
		t.Fatal("expected error for missing package name")
	}
}
