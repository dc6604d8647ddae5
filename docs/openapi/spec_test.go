package openapi

import (
	"bytes"
	"testing"
)

func TestSpecIsEmbedded(t *testing.T) {
	spec := Spec()
	if len(spec) == 0 {
		t.Fatal("embedded spec is empty")
	}
	for _, marker := range [][]byte{
		[]byte("openapi: 3.0.3"),
		[]byte("/api/v1/pens"),
		[]byte("/api/v1/reports/exports"),
		[]byte("X-Operator-ID"),
	} {
		if !bytes.Contains(spec, marker) {
			t.Fatalf("spec missing %q", marker)
		}
	}
}

func TestSpecReturnsCopy(t *testing.T) {
	spec := Spec()
	spec[0] = 'X'
	if fresh := Spec(); fresh[0] == 'X' {
		t.Fatal("mutation leaked into embedded spec")
	}
}
