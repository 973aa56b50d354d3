package ort

// OrtApiBase mirrors the two-entry bootstrap table returned by
// OrtGetApiBase.
type OrtApiBase struct {
	GetApi           uintptr
	GetVersionString uintptr
}

// OrtApi mirrors the ONNX Runtime C API function-pointer table for the base
// (API version 1) section. Field order must match onnxruntime_c_api.h
// exactly; every field is one pointer slot, so an omitted or misplaced
// entry silently shifts every later call. TestOrtApiLayoutAnchors pins the
// known offsets.
type OrtApi struct {
	CreateStatus    uintptr
	GetErrorCode    uintptr
	GetErrorMessage uintptr

	CreateEnv                 uintptr
	CreateEnvWithCustomLogger uintptr
	EnableTelemetryEvents     uintptr
	DisableTelemetryEvents    uintptr

	CreateSession          uintptr
	CreateSessionFromArray uintptr
	Run                    uintptr

	CreateSessionOptions             uintptr
	SetOptimizedModelFilePath        uintptr
	CloneSessionOptions              uintptr
	SetSessionExecutionMode          uintptr
	EnableProfiling                  uintptr
	DisableProfiling                 uintptr
	EnableMemPattern                 uintptr
	DisableMemPattern                uintptr
	EnableCpuMemArena                uintptr
	DisableCpuMemArena               uintptr
	SetSessionLogId                  uintptr
	SetSessionLogVerbosityLevel      uintptr
	SetSessionLogSeverityLevel       uintptr
	SetSessionGraphOptimizationLevel uintptr
	SetIntraOpNumThreads             uintptr
	SetInterOpNumThreads             uintptr

	CreateCustomOpDomain     uintptr
	CustomOpDomain_Add       uintptr
	AddCustomOpDomain        uintptr
	RegisterCustomOpsLibrary uintptr

	SessionGetInputCount                     uintptr
	SessionGetOutputCount                    uintptr
	SessionGetOverridableInitializerCount    uintptr
	SessionGetInputTypeInfo                  uintptr
	SessionGetOutputTypeInfo                 uintptr
	SessionGetOverridableInitializerTypeInfo uintptr
	SessionGetInputName                      uintptr
	SessionGetOutputName                     uintptr
	SessionGetOverridableInitializerName     uintptr

	CreateRunOptions                  uintptr
	RunOptionsSetRunLogVerbosityLevel uintptr
	RunOptionsSetRunLogSeverityLevel  uintptr
	RunOptionsSetRunTag               uintptr
	RunOptionsGetRunLogVerbosityLevel uintptr
	RunOptionsGetRunLogSeverityLevel  uintptr
	RunOptionsGetRunTag               uintptr
	RunOptionsSetTerminate            uintptr
	RunOptionsUnsetTerminate          uintptr

	CreateTensorAsOrtValue         uintptr
	CreateTensorWithDataAsOrtValue uintptr
	IsTensor                       uintptr
	GetTensorMutableData           uintptr

	FillStringTensor          uintptr
	GetStringTensorDataLength uintptr
	GetStringTensorContent    uintptr

	CastTypeInfoToTensorInfo     uintptr
	GetOnnxTypeFromTypeInfo      uintptr
	CreateTensorTypeAndShapeInfo uintptr
	SetTensorElementType         uintptr

	SetDimensions              uintptr
	GetTensorElementType       uintptr
	GetDimensionsCount         uintptr
	GetDimensions              uintptr
	GetSymbolicDimensions      uintptr
	GetTensorShapeElementCount uintptr
	GetTensorTypeAndShape      uintptr
	GetTypeInfo                uintptr
	GetValueType               uintptr

	CreateMemoryInfo     uintptr
	CreateCpuMemoryInfo  uintptr
	CompareMemoryInfo    uintptr
	MemoryInfoGetName    uintptr
	MemoryInfoGetId      uintptr
	MemoryInfoGetMemType uintptr
	MemoryInfoGetType    uintptr

	AllocatorAlloc                 uintptr
	AllocatorFree                  uintptr
	AllocatorGetInfo               uintptr
	GetAllocatorWithDefaultOptions uintptr
	AddFreeDimensionOverride       uintptr

	GetValue          uintptr
	GetValueCount     uintptr
	CreateValue       uintptr
	CreateOpaqueValue uintptr
	GetOpaqueValue    uintptr

	KernelInfoGetAttribute_float  uintptr
	KernelInfoGetAttribute_int64  uintptr
	KernelInfoGetAttribute_string uintptr
	KernelContext_GetInputCount   uintptr
	KernelContext_GetOutputCount  uintptr
	KernelContext_GetInput        uintptr
	KernelContext_GetOutput       uintptr

	ReleaseEnv                    uintptr
	ReleaseStatus                 uintptr
	ReleaseMemoryInfo             uintptr
	ReleaseSession                uintptr
	ReleaseValue                  uintptr
	ReleaseRunOptions             uintptr
	ReleaseTypeInfo               uintptr
	ReleaseTensorTypeAndShapeInfo uintptr
	ReleaseSessionOptions         uintptr
	ReleaseCustomOpDomain         uintptr

	// Later API versions append more entries here; extend as consumed.
}

// Value is implemented by everything that wraps an OrtValue handle and can
// be fed to or produced by a session.
type Value interface {
	// Destroy releases the underlying resources.
	Destroy() error
	// Type returns the type of the value.
	Type() ValueType
}

// handleValue is the internal side of Value: access to the raw OrtValue
// pointer for native calls.
type handleValue interface {
	ortValueHandle() uintptr
}

// ValueType represents the type of an ONNX Runtime value.
type ValueType int

const (
	ValueTypeUnknown ValueType = iota
	ValueTypeTensor
	ValueTypeSequence
	ValueTypeMap
	ValueTypeOpaque
	ValueTypeOptional
)

// Shape is an ordered sequence of tensor dimension sizes.
type Shape []int64

// NewShape creates a shape from dimensions.
func NewShape(dims ...int64) Shape {
	return Shape(dims)
}

// SessionOptions represents options for creating a session. A zero-value
// SessionOptions carries no native handle and is rejected by
// NewAdvancedSession.
type SessionOptions struct {
	handle uintptr // Pointer to OrtSessionOptions
}

// MemoryInfo represents memory allocation information.
type MemoryInfo struct {
	handle        uintptr // Pointer to OrtMemoryInfo
	name          string
	memType       MemType
	allocatorType AllocatorType
	deviceID      int
}
