package ort

import (
	"fmt"
	"runtime"
)

// StringTensor is an input tensor of variable-length UTF-8 elements. Unlike
// Tensor, the runtime allocates and owns the element storage: the Go values
// are copied in through FillStringTensor, so nothing needs pinning.
type StringTensor struct {
	shape  Shape
	values []string
	handle uintptr // Pointer to OrtValue
}

func (t *StringTensor) ortValueHandle() uintptr {
	if t == nil {
		return 0
	}
	return t.handle
}

// NewStringTensor creates a string tensor from textual values. Elements may
// be Go strings or any type implementing UTF8Data.
func NewStringTensor[T any](shape Shape, data []T) (*StringTensor, error) {
	kind, _, err := elementKindOf[T]()
	if err != nil {
		return nil, err
	}
	if kind != ElementKindString {
		return nil, fmt.Errorf("element type %T is not textual, use NewTensor", *new(T))
	}

	shapeCopy := cloneShape(shape)
	elementCount, err := shapeElementCount(shapeCopy)
	if err != nil {
		return nil, err
	}
	if len(data) != elementCount {
		return nil, fmt.Errorf("data length mismatch: got %d elements, expected %d for shape %v", len(data), elementCount, shapeCopy)
	}

	values := make([]string, len(data))
	for i, v := range data {
		b, ok := tryUTF8Bytes(v)
		if !ok {
			return nil, fmt.Errorf("element %d has no UTF-8 content (%T)", i, v)
		}
		values[i] = string(b)
	}

	ortCallMu.RLock()
	defer ortCallMu.RUnlock()

	mu.Lock()
	getAllocator := getAllocatorWithDefaultOptionsFunc
	createTensor := createTensorAsOrtValueFunc
	fillStrings := fillStringTensorFunc
	releaseValue := releaseValueFunc
	mu.Unlock()
	if getAllocator == nil || createTensor == nil || fillStrings == nil {
		return nil, fmt.Errorf("ONNX Runtime not initialized")
	}

	// The default allocator is runtime-owned and must not be released.
	var allocator uintptr
	status := getAllocator(&allocator)
	if status != 0 {
		return nil, newNativeCallError("GetAllocatorWithDefaultOptions", status)
	}

	var valueHandle uintptr
	status = createTensor(allocator, shapePtr(shapeCopy), uintptr(len(shapeCopy)), TensorElementDataTypeString, &valueHandle)
	runtime.KeepAlive(shapeCopy)
	if status != 0 {
		return nil, newNativeCallError("CreateTensorAsOrtValue", status)
	}

	if len(values) > 0 {
		cstrings := make([][]byte, len(values))
		pointers := make([]uintptr, len(values))
		for i, s := range values {
			cstrings[i], pointers[i] = GoToCstring(s)
		}

		status = fillStrings(valueHandle, &pointers[0], uintptr(len(pointers)))
		runtime.KeepAlive(cstrings)
		runtime.KeepAlive(pointers)
		if status != 0 {
			if releaseValue != nil {
				releaseValue(valueHandle)
			}
			return nil, newNativeCallError("FillStringTensor", status)
		}
	}

	tensor := &StringTensor{
		shape:  shapeCopy,
		values: values,
		handle: valueHandle,
	}

	// Finalizer is a safety net to avoid leaking OrtValue if callers forget Destroy().
	runtime.SetFinalizer(tensor, func(t *StringTensor) {
		_ = t.Destroy()
	})

	return tensor, nil
}

// GetData returns the tensor's values as Go strings.
// After Destroy() it returns nil. Calling on a nil receiver also returns nil.
func (t *StringTensor) GetData() []string {
	if t == nil {
		return nil
	}
	return t.values
}

// Shape returns the tensor shape
func (t *StringTensor) Shape() Shape {
	if t == nil {
		return nil
	}
	return t.shape
}

// Destroy releases the tensor resources
func (t *StringTensor) Destroy() error {
	if t == nil {
		return nil
	}

	// Lock order here is ortCallMu -> mu.
	ortCallMu.Lock()
	defer ortCallMu.Unlock()

	mu.Lock()
	handle := t.handle
	releaseValue := releaseValueFunc
	t.handle = 0
	t.values = nil
	t.shape = nil
	runtime.SetFinalizer(t, nil)
	mu.Unlock()

	if handle != 0 && releaseValue != nil {
		releaseValue(handle)
	}

	return nil
}

// Type returns the value type (always ValueTypeTensor for tensors)
func (t *StringTensor) Type() ValueType {
	return ValueTypeTensor
}
