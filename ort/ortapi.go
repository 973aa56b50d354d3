package ort

import "github.com/ebitengine/purego"

// Typed bindings over the loaded OrtApi table. The variables are registered
// during InitializeEnvironment and reset to nil on teardown; tests stub
// them directly. Call sites read their function under mu so teardown cannot
// race a lookup.
var (
	getVersionStringFunc func() uintptr

	getErrorCodeFunc    func(status uintptr) int32
	getErrorMessageFunc func(status uintptr) uintptr
	releaseStatusFunc   func(status uintptr)

	createEnvFunc  func(level LoggingLevel, logID uintptr, env *uintptr) uintptr
	releaseEnvFunc func(env uintptr)

	createSessionFunc  func(env uintptr, modelPath uintptr, options uintptr, session *uintptr) uintptr
	runSessionFunc     func(session uintptr, runOptions uintptr, inputNames *uintptr, inputValues *uintptr, inputLen uintptr, outputNames *uintptr, outputLen uintptr, outputValues *uintptr) uintptr
	releaseSessionFunc func(session uintptr)

	createSessionOptionsFunc  func(options *uintptr) uintptr
	releaseSessionOptionsFunc func(options uintptr)

	createMemoryInfoFunc  func(name uintptr, allocatorType AllocatorType, deviceID int32, memType MemType, out *uintptr) uintptr
	releaseMemoryInfoFunc func(memInfo uintptr)

	getAllocatorWithDefaultOptionsFunc func(out *uintptr) uintptr

	createTensorWithDataAsOrtValueFunc func(memInfo uintptr, data uintptr, dataLen uintptr, shape *int64, shapeLen uintptr, elementType TensorElementDataType, out *uintptr) uintptr
	createTensorAsOrtValueFunc         func(allocator uintptr, shape *int64, shapeLen uintptr, elementType TensorElementDataType, out *uintptr) uintptr
	fillStringTensorFunc               func(value uintptr, values *uintptr, count uintptr) uintptr
	releaseValueFunc                   func(value uintptr)

	getTensorMutableDataFunc      func(value uintptr, out *uintptr) uintptr
	getStringTensorDataLengthFunc func(value uintptr, out *uintptr) uintptr
	getStringTensorContentFunc    func(value uintptr, buf uintptr, bufLen uintptr, offsets *uintptr, offsetsLen uintptr) uintptr

	getTensorTypeAndShapeFunc         func(value uintptr, out *uintptr) uintptr
	getTensorElementTypeFunc          func(info uintptr, out *int32) uintptr
	getDimensionsCountFunc            func(info uintptr, out *uintptr) uintptr
	getDimensionsFunc                 func(info uintptr, dims *int64, count uintptr) uintptr
	getTensorShapeElementCountFunc    func(info uintptr, out *uintptr) uintptr
	releaseTensorTypeAndShapeInfoFunc func(info uintptr)
)

// registerBaseFunctions binds the OrtApiBase entries.
func registerBaseFunctions(base *OrtApiBase) {
	purego.RegisterFunc(&getVersionStringFunc, base.GetVersionString)
}

// registerOrtFunctions binds every entry this package consumes from the
// resolved OrtApi table. Called with mu held.
func registerOrtFunctions(api *OrtApi) {
	purego.RegisterFunc(&getErrorCodeFunc, api.GetErrorCode)
	purego.RegisterFunc(&getErrorMessageFunc, api.GetErrorMessage)
	purego.RegisterFunc(&releaseStatusFunc, api.ReleaseStatus)

	purego.RegisterFunc(&createEnvFunc, api.CreateEnv)
	purego.RegisterFunc(&releaseEnvFunc, api.ReleaseEnv)

	purego.RegisterFunc(&createSessionFunc, api.CreateSession)
	purego.RegisterFunc(&runSessionFunc, api.Run)
	purego.RegisterFunc(&releaseSessionFunc, api.ReleaseSession)

	purego.RegisterFunc(&createSessionOptionsFunc, api.CreateSessionOptions)
	purego.RegisterFunc(&releaseSessionOptionsFunc, api.ReleaseSessionOptions)

	purego.RegisterFunc(&createMemoryInfoFunc, api.CreateMemoryInfo)
	purego.RegisterFunc(&releaseMemoryInfoFunc, api.ReleaseMemoryInfo)

	purego.RegisterFunc(&getAllocatorWithDefaultOptionsFunc, api.GetAllocatorWithDefaultOptions)

	purego.RegisterFunc(&createTensorWithDataAsOrtValueFunc, api.CreateTensorWithDataAsOrtValue)
	purego.RegisterFunc(&createTensorAsOrtValueFunc, api.CreateTensorAsOrtValue)
	purego.RegisterFunc(&fillStringTensorFunc, api.FillStringTensor)
	purego.RegisterFunc(&releaseValueFunc, api.ReleaseValue)

	purego.RegisterFunc(&getTensorMutableDataFunc, api.GetTensorMutableData)
	purego.RegisterFunc(&getStringTensorDataLengthFunc, api.GetStringTensorDataLength)
	purego.RegisterFunc(&getStringTensorContentFunc, api.GetStringTensorContent)

	purego.RegisterFunc(&getTensorTypeAndShapeFunc, api.GetTensorTypeAndShape)
	purego.RegisterFunc(&getTensorElementTypeFunc, api.GetTensorElementType)
	purego.RegisterFunc(&getDimensionsCountFunc, api.GetDimensionsCount)
	purego.RegisterFunc(&getDimensionsFunc, api.GetDimensions)
	purego.RegisterFunc(&getTensorShapeElementCountFunc, api.GetTensorShapeElementCount)
	purego.RegisterFunc(&releaseTensorTypeAndShapeInfoFunc, api.ReleaseTensorTypeAndShapeInfo)
}

// resetOrtFunctions clears every binding. Called with mu held during
// environment teardown and from test state resets.
func resetOrtFunctions() {
	getVersionStringFunc = nil

	getErrorCodeFunc = nil
	getErrorMessageFunc = nil
	releaseStatusFunc = nil

	createEnvFunc = nil
	releaseEnvFunc = nil

	createSessionFunc = nil
	runSessionFunc = nil
	releaseSessionFunc = nil

	createSessionOptionsFunc = nil
	releaseSessionOptionsFunc = nil

	createMemoryInfoFunc = nil
	releaseMemoryInfoFunc = nil

	getAllocatorWithDefaultOptionsFunc = nil

	createTensorWithDataAsOrtValueFunc = nil
	createTensorAsOrtValueFunc = nil
	fillStringTensorFunc = nil
	releaseValueFunc = nil

	getTensorMutableDataFunc = nil
	getStringTensorDataLengthFunc = nil
	getStringTensorContentFunc = nil

	getTensorTypeAndShapeFunc = nil
	getTensorElementTypeFunc = nil
	getDimensionsCountFunc = nil
	getDimensionsFunc = nil
	getTensorShapeElementCountFunc = nil
	releaseTensorTypeAndShapeInfoFunc = nil
}
