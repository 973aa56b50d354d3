package ort

import (
	"errors"
	"strings"
	"testing"
)

func TestElementKindNativeRoundTrip(t *testing.T) {
	kinds := []ElementKind{
		ElementKindFloat32,
		ElementKindUint8,
		ElementKindInt8,
		ElementKindUint16,
		ElementKindInt16,
		ElementKindInt32,
		ElementKindInt64,
		ElementKindString,
		ElementKindFloat64,
		ElementKindUint32,
		ElementKindUint64,
	}
	if len(kinds) != len(elementKindTable) {
		t.Fatalf("kind list out of sync with registry: %d vs %d", len(kinds), len(elementKindTable))
	}

	seenNative := make(map[TensorElementDataType]ElementKind)
	for _, kind := range kinds {
		native := kind.Native()
		if native == TensorElementDataTypeUndefined {
			t.Fatalf("kind %v has no native mapping", kind)
		}
		if prev, dup := seenNative[native]; dup {
			t.Fatalf("native type %d mapped from both %v and %v", native, prev, kind)
		}
		seenNative[native] = kind

		back, err := ElementKindFromNative(native)
		if err != nil {
			t.Fatalf("round trip failed for %v: %v", kind, err)
		}
		if back != kind {
			t.Fatalf("round trip mismatch: %v -> %d -> %v", kind, native, back)
		}
	}
}

func TestElementKindFromNativeUnsupported(t *testing.T) {
	unsupported := []TensorElementDataType{
		TensorElementDataTypeUndefined,
		TensorElementDataTypeBool,
		TensorElementDataTypeFloat16,
		TensorElementDataTypeBFloat16,
		TensorElementDataTypeComplex64,
		TensorElementDataTypeComplex128,
		TensorElementDataTypeFloat8E4M3FN,
		TensorElementDataTypeUint4,
		TensorElementDataTypeInt4,
	}

	for _, native := range unsupported {
		_, err := ElementKindFromNative(native)
		if err == nil {
			t.Fatalf("expected error for native type %d", native)
		}
		var unsupportedErr *UnsupportedElementKindError
		if !errors.As(err, &unsupportedErr) {
			t.Fatalf("expected UnsupportedElementKindError, got %T", err)
		}
		if unsupportedErr.Native != native {
			t.Fatalf("error carries native type %d, want %d", unsupportedErr.Native, native)
		}
	}
}

func TestElementKindByteSize(t *testing.T) {
	tests := []struct {
		kind ElementKind
		size uintptr
	}{
		{ElementKindUint8, 1},
		{ElementKindInt16, 2},
		{ElementKindFloat32, 4},
		{ElementKindInt64, 8},
		{ElementKindFloat64, 8},
		{ElementKindString, 0},
	}

	for _, tt := range tests {
		if got := tt.kind.ByteSize(); got != tt.size {
			t.Errorf("%v: got size %d, want %d", tt.kind, got, tt.size)
		}
	}
}

func TestElementKindString(t *testing.T) {
	if got := ElementKindFloat32.String(); got != "float32" {
		t.Errorf("unexpected name: %q", got)
	}
	if got := ElementKind(99).String(); !strings.Contains(got, "99") {
		t.Errorf("unknown kind should include raw value, got %q", got)
	}
}

type utf8Token []byte

func (t utf8Token) UTF8Bytes() []byte { return t }

func TestUTF8DataCapability(t *testing.T) {
	kind, size, err := elementKindOf[utf8Token]()
	if err != nil {
		t.Fatalf("UTF8Data implementation should map to string kind: %v", err)
	}
	if kind != ElementKindString || size != 0 {
		t.Fatalf("got kind %v size %d, want string kind with size 0", kind, size)
	}

	b, ok := tryUTF8Bytes(utf8Token("abc"))
	if !ok || string(b) != "abc" {
		t.Fatalf("tryUTF8Bytes on token: got %q ok=%v", b, ok)
	}

	b, ok = tryUTF8Bytes("plain")
	if !ok || string(b) != "plain" {
		t.Fatalf("tryUTF8Bytes on string: got %q ok=%v", b, ok)
	}

	if _, ok := tryUTF8Bytes(3.14); ok {
		t.Fatal("numeric value must not probe as textual")
	}
}
