package serdegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serdegen/serdegen/sink"
)

const testdataPkg = "github.com/serdegen/serdegen/provider/testdata"

func TestGenerator_EndToEnd(t *testing.T) {
	memSink := sink.NewMemorySink()
	result, err := FromPackages(testdataPkg).
		Roots("User").
		WithKeyPath("User.ID").
		PackageName("testdata").
		ToSink(memSink)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if len(result.Files) != 1 {
		t.Fatalf("generated %d files, want 1", len(result.Files))
	}
	content := string(memSink.Get("testdata_serde.go"))
	if content == "" {
		t.Fatal("generated file not written to sink")
	}

	want := []string{
		"package testdata",
		"func EncodeUser(w io.Writer, v User) error {",
		"func DecodeUser(r io.Reader, v *User) error {",
		"func UserKeyID(v User) int64 {",
	}
	for _, w := range want {
		if !strings.Contains(content, w) {
			t.Errorf("generated output missing %q", w)
		}
	}
}

func TestGenerator_ToDir(t *testing.T) {
	dir := t.TempDir()
	err := FromPackages(testdataPkg).
		Roots("LinkedNode").
		PackageName("testdata").
		ToDir(dir)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "testdata_serde.go"))
	if err != nil {
		t.Fatalf("reading generated file: %v", err)
	}
	if !strings.Contains(string(content), "func EncodeLinkedNode(w io.Writer, v LinkedNode) error {") {
		t.Error("generated file missing encoder for LinkedNode")
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	_, err := FromPackages().Roots("User").ToSink(sink.NewMemorySink())
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestGenerate_UnknownRoot(t *testing.T) {
	_, err := FromPackages(testdataPkg).
		Roots("DoesNotExist").
		ToSink(sink.NewMemorySink())
	if err == nil {
		t.Fatal("expected error for unknown root type")
	}
}
