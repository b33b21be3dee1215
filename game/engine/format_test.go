package engine

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestTypesFileIsGofmted(t *testing.T) {
	src, err := os.ReadFile("types.go")
	if err != nil {
		t.Fatalf("Failed to read types.go: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("types.go does not parse: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Error("types.go is not gofmt-formatted")
	}
}
