package ort

import (
	"fmt"
	"unsafe"
)

// ElementKind identifies the managed-side representation of a tensor's
// elements. It is a closed set: every kind corresponds to exactly one native
// TensorElementDataType and the mapping is a bijection restricted to this
// set. Native kinds outside it (bool, float16, bfloat16, complex, float8,
// int4) are rejected rather than reinterpreted.
type ElementKind int

const (
	ElementKindFloat32 ElementKind = iota
	ElementKindUint8
	ElementKindInt8
	ElementKindUint16
	ElementKindInt16
	ElementKindInt32
	ElementKindInt64
	ElementKindString
	ElementKindFloat64
	ElementKindUint32
	ElementKindUint64
)

// elementKindTable is the single source of both mapping directions. Adding a
// kind here adds to_native and from_native atomically, which keeps the
// bijection invariant.
var elementKindTable = []struct {
	kind   ElementKind
	native TensorElementDataType
	size   uintptr
	name   string
}{
	{ElementKindFloat32, TensorElementDataTypeFloat, 4, "float32"},
	{ElementKindUint8, TensorElementDataTypeUint8, 1, "uint8"},
	{ElementKindInt8, TensorElementDataTypeInt8, 1, "int8"},
	{ElementKindUint16, TensorElementDataTypeUint16, 2, "uint16"},
	{ElementKindInt16, TensorElementDataTypeInt16, 2, "int16"},
	{ElementKindInt32, TensorElementDataTypeInt32, 4, "int32"},
	{ElementKindInt64, TensorElementDataTypeInt64, 8, "int64"},
	{ElementKindString, TensorElementDataTypeString, 0, "string"},
	{ElementKindFloat64, TensorElementDataTypeDouble, 8, "float64"},
	{ElementKindUint32, TensorElementDataTypeUint32, 4, "uint32"},
	{ElementKindUint64, TensorElementDataTypeUint64, 8, "uint64"},
}

// Native returns the ONNX Runtime element type for a supported kind.
// Unknown kinds map to TensorElementDataTypeUndefined.
func (k ElementKind) Native() TensorElementDataType {
	for _, entry := range elementKindTable {
		if entry.kind == k {
			return entry.native
		}
	}
	return TensorElementDataTypeUndefined
}

// ByteSize returns the fixed element width in bytes, or 0 for String.
func (k ElementKind) ByteSize() uintptr {
	for _, entry := range elementKindTable {
		if entry.kind == k {
			return entry.size
		}
	}
	return 0
}

func (k ElementKind) String() string {
	for _, entry := range elementKindTable {
		if entry.kind == k {
			return entry.name
		}
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

// ElementKindFromNative maps a runtime-reported element type back to the
// supported set. The mapping is partial: native kinds outside the registry
// yield an UnsupportedElementKindError and the caller must fail rather than
// guess an interpretation.
func ElementKindFromNative(native TensorElementDataType) (ElementKind, error) {
	for _, entry := range elementKindTable {
		if entry.native == native {
			return entry.kind, nil
		}
	}
	return 0, &UnsupportedElementKindError{Native: native}
}

// UTF8Data is the textual capability. Any type implementing it maps to
// ElementKindString and exposes its UTF-8 content for tensor transfer.
// Numeric element types never satisfy it, so no type is ambiguous between
// the numeric and textual mapping families.
type UTF8Data interface {
	UTF8Bytes() []byte
}

// elementKindOf resolves a Go element type to its ElementKind and fixed
// byte width at compile time (the type switch collapses per instantiation).
// string and UTF8Data implementations resolve to String with width 0.
func elementKindOf[T any]() (ElementKind, uintptr, error) {
	var zero T

	switch any(zero).(type) {
	case float32:
		return ElementKindFloat32, unsafe.Sizeof(float32(0)), nil
	case float64:
		return ElementKindFloat64, unsafe.Sizeof(float64(0)), nil
	case uint8:
		return ElementKindUint8, unsafe.Sizeof(uint8(0)), nil
	case int8:
		return ElementKindInt8, unsafe.Sizeof(int8(0)), nil
	case uint16:
		return ElementKindUint16, unsafe.Sizeof(uint16(0)), nil
	case int16:
		return ElementKindInt16, unsafe.Sizeof(int16(0)), nil
	case uint32:
		return ElementKindUint32, unsafe.Sizeof(uint32(0)), nil
	case int32:
		return ElementKindInt32, unsafe.Sizeof(int32(0)), nil
	case uint64:
		return ElementKindUint64, unsafe.Sizeof(uint64(0)), nil
	case int64:
		return ElementKindInt64, unsafe.Sizeof(int64(0)), nil
	case string:
		return ElementKindString, 0, nil
	}

	if _, ok := any(zero).(UTF8Data); ok {
		return ElementKindString, 0, nil
	}

	return 0, 0, fmt.Errorf("unsupported tensor element type %T", zero)
}

// tryUTF8Bytes probes a value for textual content: textual values yield
// their UTF-8 bytes, numeric values yield (nil, false).
func tryUTF8Bytes(v any) ([]byte, bool) {
	switch data := v.(type) {
	case string:
		return []byte(data), true
	case UTF8Data:
		return data.UTF8Bytes(), true
	default:
		return nil, false
	}
}
