package ort

import (
	"fmt"
	"runtime"
)

// DynOutput is a session output whose element kind was not known until the
// runtime produced it. It carries the discovered kind, shape, and element
// count alongside a shared reference to the value; callers inspect Kind and
// then extract with the matching type parameter.
type DynOutput struct {
	handle       *ValueHandle
	kind         ElementKind
	shape        Shape
	elementCount int
	closed       bool
}

// Kind returns the element kind the runtime reported for this output.
func (o *DynOutput) Kind() ElementKind { return o.kind }

// Shape returns the output's dimensions.
func (o *DynOutput) Shape() Shape { return o.shape }

// ElementCount returns the total number of elements.
func (o *DynOutput) ElementCount() int { return o.elementCount }

// Close drops the DynOutput's reference on the value. Extracted TensorData
// holds its own reference, so closing the DynOutput first is fine. Close is
// idempotent.
func (o *DynOutput) Close() {
	if o.closed {
		return
	}
	o.closed = true
	if o.handle != nil {
		o.handle.Release()
		o.handle = nil
	}
}

// ExtractOutput reads an output's elements as type T, failing if T does not
// match the discovered element kind.
func ExtractOutput[T any](o *DynOutput) (*TensorData[T], error) {
	if o.closed || o.handle == nil {
		return nil, fmt.Errorf("output has been closed")
	}

	kind, _, err := elementKindOf[T]()
	if err != nil {
		return nil, err
	}
	if kind != o.kind {
		return nil, fmt.Errorf("output holds %s elements, requested %s", o.kind, kind)
	}

	return ExtractTensorData[T](o.handle, o.shape, o.elementCount)
}

// newDynOutputFromHandle discovers a value's element kind and shape from the
// runtime and wraps it. The DynOutput takes over the caller's reference on
// the handle; on error the reference is untouched.
func newDynOutputFromHandle(handle *ValueHandle) (*DynOutput, error) {
	kind, shape, count, err := queryTensorTypeAndShape(handle)
	if err != nil {
		return nil, err
	}
	return &DynOutput{
		handle:       handle,
		kind:         kind,
		shape:        shape,
		elementCount: count,
	}, nil
}

// queryTensorTypeAndShape reads a value's element type, dimensions, and
// element count through a transient type-and-shape info handle.
func queryTensorTypeAndShape(handle *ValueHandle) (ElementKind, Shape, int, error) {
	ortCallMu.RLock()
	defer ortCallMu.RUnlock()

	mu.Lock()
	getInfo := getTensorTypeAndShapeFunc
	getElementType := getTensorElementTypeFunc
	getDimsCount := getDimensionsCountFunc
	getDims := getDimensionsFunc
	getCount := getTensorShapeElementCountFunc
	releaseInfo := releaseTensorTypeAndShapeInfoFunc
	mu.Unlock()
	if getInfo == nil || getElementType == nil || getDimsCount == nil || getDims == nil || getCount == nil || releaseInfo == nil {
		return 0, nil, 0, fmt.Errorf("ONNX Runtime not initialized")
	}

	var info uintptr
	status := getInfo(handle.valuePtr(), &info)
	if status != 0 {
		return 0, nil, 0, newNativeCallError("GetTensorTypeAndShape", status)
	}
	defer releaseInfo(info)

	var nativeType int32
	status = getElementType(info, &nativeType)
	if status != 0 {
		return 0, nil, 0, newNativeCallError("GetTensorElementType", status)
	}
	kind, err := ElementKindFromNative(TensorElementDataType(nativeType))
	if err != nil {
		return 0, nil, 0, err
	}

	var dimCount uintptr
	status = getDimsCount(info, &dimCount)
	if status != 0 {
		return 0, nil, 0, newNativeCallError("GetDimensionsCount", status)
	}

	shape := make(Shape, dimCount)
	if dimCount > 0 {
		status = getDims(info, &shape[0], dimCount)
		if status != 0 {
			return 0, nil, 0, newNativeCallError("GetDimensions", status)
		}
	}

	var count uintptr
	status = getCount(info, &count)
	if status != 0 {
		return 0, nil, 0, newNativeCallError("GetTensorShapeElementCount", status)
	}

	runtime.KeepAlive(handle)
	return kind, shape, int(count), nil
}
