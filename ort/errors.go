package ort

import "fmt"

// NativeCallError reports a non-success status returned by a named ONNX
// Runtime entry point. The status is consumed (message extracted, then
// released) before the error is returned, so callers never see a raw
// OrtStatus handle.
type NativeCallError struct {
	Call    string
	Code    ErrorCode
	Message string
}

func (e *NativeCallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed with code %d", e.Call, e.Code)
	}
	return fmt.Sprintf("%s failed: %s", e.Call, e.Message)
}

// newNativeCallError consumes a non-zero status handle: it reads the error
// code and message, releases the status, and returns a typed error naming
// the failing call.
func newNativeCallError(call string, status uintptr) *NativeCallError {
	err := &NativeCallError{
		Call:    call,
		Code:    getErrorCode(status),
		Message: getErrorMessage(status),
	}
	releaseStatus(status)
	return err
}

// UnsupportedElementKindError reports a native tensor element type outside
// the supported registry. The native kind is carried so callers can log it;
// it is never coerced to a nearby supported kind.
type UnsupportedElementKindError struct {
	Native TensorElementDataType
}

func (e *UnsupportedElementKindError) Error() string {
	return fmt.Sprintf("unsupported native tensor element type %d", int(e.Native))
}

// DecodeError reports a string tensor element that is not valid UTF-8.
// Start and End are byte offsets into the tensor's flat content buffer.
// One bad element aborts the whole extraction; no partial result is kept.
type DecodeError struct {
	Index int
	Start uint64
	End   uint64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("string tensor element %d (bytes %d..%d) is not valid UTF-8", e.Index, e.Start, e.End)
}
