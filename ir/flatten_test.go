package ir

import "testing"

// intRef is the type handle used for scalar leaves in these tests.
func intRef() TypeRef {
	return TypeRef{Name: "int", Caps: CapOrderedKey | CapComparable}
}

func intPrimitive(id int) *Primitive {
	return NewPrimitive(id, intRef(), "0", intRef())
}

// nodeGraph builds the descriptor of the self-referential record
//
//	type Node struct { Value int; Next *Node }
//
// where the next field re-enters the record through a back-reference.
func nodeGraph() *ConstructorRecord {
	nodeRef := TypeRef{Name: "Node", Package: "example.com/list"}
	return NewConstructorRecord(1, nodeRef, []Field{
		{Name: "Value", Type: intRef(), Desc: intPrimitive(2)},
		{Name: "Next", Type: nodeRef, Desc: NewRecursiveRef(3, nodeRef, 1)},
	}, SymbolRef{Name: "Node", Package: "example.com/list"}, true)
}

func TestFlatten_StartsWithSelf(t *testing.T) {
	typ := TypeRef{Name: "T"}
	descs := []Descriptor{
		intPrimitive(1),
		NewCollection(1, typ, intPrimitive(2)),
		NewArray(1, typ, intPrimitive(2)),
		NewOptional(1, typ, intPrimitive(2)),
		NewEither(1, typ, intPrimitive(2), intPrimitive(3)),
		NewRecord(1, typ, []Field{{Name: "a", Desc: intPrimitive(2)}}),
		NewUnsupported(1, typ, "reason"),
		nodeGraph(),
	}
	for _, d := range descs {
		flat := Flatten(d)
		if len(flat) < 1 {
			t.Fatalf("Flatten(%v) is empty", d.Kind())
		}
		if flat[0] != d {
			t.Errorf("Flatten(%v)[0] = %v, want the descriptor itself", d.Kind(), flat[0].Kind())
		}
	}
}

func TestFlatten_ContainerBeforeElement(t *testing.T) {
	elem := intPrimitive(2)
	coll := NewCollection(1, TypeRef{Name: "[]int"}, elem)

	flat := Flatten(coll)
	if len(flat) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(flat))
	}
	if flat[0] != Descriptor(coll) || flat[1] != Descriptor(elem) {
		t.Error("expected container node first, element second")
	}
}

func TestFlatten_NestedCollections(t *testing.T) {
	inner := NewCollection(2, TypeRef{Name: "[]int"}, intPrimitive(3))
	outer := NewCollection(1, TypeRef{Name: "[][]int"}, inner)

	flat := Flatten(outer)
	if len(flat) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(flat))
	}
	for i, wantID := range []int{1, 2, 3} {
		if flat[i].ID() != wantID {
			t.Errorf("flat[%d].ID() = %d, want %d", i, flat[i].ID(), wantID)
		}
	}
}

func TestFlatten_RecordFieldOrder(t *testing.T) {
	rec := NewRecord(1, TypeRef{Name: "R"}, []Field{
		{Name: "a", Desc: intPrimitive(2)},
		{Name: "b", Desc: NewCollection(3, TypeRef{Name: "[]int"}, intPrimitive(4))},
	})

	flat := Flatten(rec)
	wantIDs := []int{1, 2, 3, 4}
	if len(flat) != len(wantIDs) {
		t.Fatalf("expected %d nodes, got %d", len(wantIDs), len(flat))
	}
	for i, want := range wantIDs {
		if flat[i].ID() != want {
			t.Errorf("flat[%d].ID() = %d, want %d", i, flat[i].ID(), want)
		}
	}
}

func TestFlatten_RecursiveGraphIsFinite(t *testing.T) {
	node := nodeGraph()

	flat := Flatten(node)
	if len(flat) != 3 {
		t.Fatalf("expected exactly 3 nodes (Node, Value primitive, back-reference), got %d", len(flat))
	}
	if flat[0].Kind() != KindConstructorRecord {
		t.Errorf("flat[0] = %v, want ConstructorRecord", flat[0].Kind())
	}
	if flat[1].Kind() != KindPrimitive {
		t.Errorf("flat[1] = %v, want Primitive", flat[1].Kind())
	}
	if flat[2].Kind() != KindRecursiveRef {
		t.Errorf("flat[2] = %v, want RecursiveRef", flat[2].Kind())
	}
}

func TestFlatten_UniqueIdentities(t *testing.T) {
	flat := Flatten(nodeGraph())
	seen := make(map[int]bool)
	for _, d := range flat {
		if seen[d.ID()] {
			t.Errorf("duplicate identity %d in flatten result", d.ID())
		}
		seen[d.ID()] = true
	}
}

func TestFindByID(t *testing.T) {
	node := nodeGraph()

	for _, d := range Flatten(node) {
		got, ok := FindByID(node, d.ID())
		if !ok {
			t.Fatalf("FindByID(%d) not found", d.ID())
		}
		if got != d {
			t.Errorf("FindByID(%d) returned a different node", d.ID())
		}
	}

	if _, ok := FindByID(node, 999); ok {
		t.Error("FindByID(999) should not resolve")
	}
}

func TestFindByType(t *testing.T) {
	node := nodeGraph()

	prims := FindByType[*Primitive](node)
	if len(prims) != 1 || prims[0].ID() != 2 {
		t.Errorf("FindByType[*Primitive] = %v, want single node with id 2", prims)
	}

	refs := FindByType[*RecursiveRef](node)
	if len(refs) != 1 || refs[0].Target != 1 {
		t.Errorf("FindByType[*RecursiveRef] = %v, want single ref targeting 1", refs)
	}

	if got := FindByType[*Either](node); len(got) != 0 {
		t.Errorf("FindByType[*Either] = %v, want empty", got)
	}
}

func TestRecursiveRefs_RoundTrip(t *testing.T) {
	node := nodeGraph()

	targets := RecursiveRefs(node)
	if len(targets) != 1 {
		t.Fatalf("expected 1 recursive target, got %d", len(targets))
	}
	if targets[0] != Descriptor(node) {
		t.Error("resolved target should be the outer record descriptor")
	}
}

func TestRecursiveRefs_Empty(t *testing.T) {
	rec := NewRecord(1, TypeRef{Name: "R"}, []Field{
		{Name: "a", Desc: intPrimitive(2)},
	})
	if got := RecursiveRefs(rec); len(got) != 0 {
		t.Errorf("expected no recursive refs, got %d", len(got))
	}
}

// A reference whose target lives outside the searched root resolves to
// nothing. This mirrors flattening a sub-descriptor instead of the true
// analysis root and is deliberate behavior, not an error.
func TestRecursiveRefs_DanglingTargetSkipped(t *testing.T) {
	node := nodeGraph()
	next := node.Fields[1].Desc

	if got := RecursiveRefs(next); len(got) != 0 {
		t.Errorf("dangling target should yield nothing, got %d targets", len(got))
	}
}

func TestRecursiveRefs_Deduplicates(t *testing.T) {
	nodeRef := TypeRef{Name: "Tree", Package: "example.com/tree"}
	tree := NewConstructorRecord(1, nodeRef, []Field{
		{Name: "Left", Type: nodeRef, Desc: NewRecursiveRef(2, nodeRef, 1)},
		{Name: "Right", Type: nodeRef, Desc: NewRecursiveRef(3, nodeRef, 1)},
	}, SymbolRef{Name: "Tree"}, true)

	targets := RecursiveRefs(tree)
	if len(targets) != 1 {
		t.Errorf("expected deduplicated single target, got %d", len(targets))
	}
}
