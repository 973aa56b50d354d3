package ort

import (
	"fmt"
	"runtime"
	"unicode/utf8"
	"unsafe"
)

// TensorData holds the element data of an extracted tensor output.
//
// Numeric instantiations borrow: Values returns a view directly over the
// runtime-owned buffer, valid until Close. String instantiations copy: the
// flat UTF-8 content is decoded into owned Go strings during extraction and
// Values stays valid after Close.
//
// Either way the TensorData retains the underlying ValueHandle for its
// lifetime and Close drops that reference exactly once.
type TensorData[T any] struct {
	kind     ElementKind
	shape    Shape
	borrowed bool
	handle   *ValueHandle
	data     []T
	closed   bool
}

// Kind returns the element kind the data was extracted as.
func (d *TensorData[T]) Kind() ElementKind { return d.kind }

// Shape returns the tensor's dimensions.
func (d *TensorData[T]) Shape() Shape { return d.shape }

// IsBorrowed reports whether Values aliases runtime-owned memory.
func (d *TensorData[T]) IsBorrowed() bool { return d.borrowed }

// Values returns the flat element data in row-major order. For borrowed
// data the slice must not be used after Close.
func (d *TensorData[T]) Values() []T { return d.data }

// Close drops the reference on the underlying value. Borrowed views become
// invalid; copied string data stays usable. Close is idempotent.
func (d *TensorData[T]) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if d.borrowed {
		d.data = nil
	}
	if d.handle != nil {
		d.handle.Release()
		d.handle = nil
	}
}

// ExtractTensorData reads the elements of a tensor value as type T. The
// handle is retained for the lifetime of the returned TensorData; the caller
// keeps its own reference.
//
// T must match the tensor's element kind exactly. Numeric kinds yield a
// zero-copy view over the runtime buffer; the string kind yields owned Go
// strings via the two-phase length/content protocol.
func ExtractTensorData[T any](handle *ValueHandle, shape Shape, elementCount int) (*TensorData[T], error) {
	kind, _, err := elementKindOf[T]()
	if err != nil {
		return nil, err
	}

	ortCallMu.RLock()
	defer ortCallMu.RUnlock()

	if kind == ElementKindString {
		values, err := extractStrings(handle, elementCount)
		if err != nil {
			return nil, err
		}
		data, ok := any(values).([]T)
		if !ok {
			// elementKindOf mapped a UTF8Data implementation; string tensors
			// decode to Go strings only.
			return nil, fmt.Errorf("string tensor data must be extracted as []string, not %T", data)
		}
		return &TensorData[T]{
			kind:   ElementKindString,
			shape:  shape,
			handle: handle.Retain(),
			data:   data,
		}, nil
	}

	view, err := extractPrimitive[T](handle, elementCount)
	if err != nil {
		return nil, err
	}
	return &TensorData[T]{
		kind:     kind,
		shape:    shape,
		borrowed: true,
		handle:   handle.Retain(),
		data:     view,
	}, nil
}

// extractPrimitive maps the tensor's native buffer into a []T without
// copying. Caller holds ortCallMu.RLock.
func extractPrimitive[T any](handle *ValueHandle, elementCount int) ([]T, error) {
	if elementCount == 0 {
		return []T{}, nil
	}

	mu.Lock()
	getData := getTensorMutableDataFunc
	mu.Unlock()
	if getData == nil {
		return nil, fmt.Errorf("ONNX Runtime not initialized")
	}

	var raw uintptr
	status := getData(handle.valuePtr(), &raw)
	if status != 0 {
		return nil, newNativeCallError("GetTensorMutableData", status)
	}
	if raw == 0 {
		panic("ort: GetTensorMutableData returned success with a null data pointer")
	}

	view := unsafe.Slice((*T)(unsafe.Pointer(raw)), elementCount)
	runtime.KeepAlive(handle)
	return view, nil
}

// extractStrings copies a string tensor's contents out of the runtime in
// two phases: total byte length first, then the flat buffer plus the
// per-element offset table. Caller holds ortCallMu.RLock.
func extractStrings(handle *ValueHandle, elementCount int) ([]string, error) {
	if elementCount == 0 {
		return []string{}, nil
	}

	mu.Lock()
	getLength := getStringTensorDataLengthFunc
	getContent := getStringTensorContentFunc
	mu.Unlock()
	if getLength == nil || getContent == nil {
		return nil, fmt.Errorf("ONNX Runtime not initialized")
	}

	value := handle.valuePtr()

	var totalLength uintptr
	status := getLength(value, &totalLength)
	if status != 0 {
		return nil, newNativeCallError("GetStringTensorDataLength", status)
	}

	// The buffer may legally be empty (all elements ""), so size at least 1
	// to keep a valid base pointer for the native call.
	bufLen := totalLength
	if bufLen == 0 {
		bufLen = 1
	}
	buf := make([]byte, bufLen)

	// One extra slot: the runtime fills elementCount start offsets and the
	// decoder appends the total length as the final boundary.
	offsets := make([]uintptr, elementCount+1)

	status = getContent(
		value,
		uintptr(unsafe.Pointer(&buf[0])),
		totalLength,
		&offsets[0],
		uintptr(elementCount),
	)
	runtime.KeepAlive(handle)
	if status != 0 {
		return nil, newNativeCallError("GetStringTensorContent", status)
	}
	offsets[elementCount] = totalLength

	values := make([]string, elementCount)
	for i := 0; i < elementCount; i++ {
		start, end := offsets[i], offsets[i+1]
		if start > end || end > totalLength {
			panic(fmt.Sprintf("ort: inconsistent string tensor offsets: element %d spans %d..%d of %d bytes", i, start, end, totalLength))
		}
		chunk := buf[start:end]
		if !utf8.Valid(chunk) {
			return nil, &DecodeError{Index: i, Start: uint64(start), End: uint64(end)}
		}
		values[i] = string(chunk)
	}
	return values, nil
}
