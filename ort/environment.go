package ort

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	// mu guards all package-level environment state below and the function
	// bindings in ortapi.go.
	mu sync.Mutex

	// ortCallMu serializes environment teardown against in-flight native
	// calls. Callers performing native work take RLock; DestroyEnvironment
	// and ValueHandle.Release take Lock. Lock order is ortCallMu before mu.
	ortCallMu sync.RWMutex

	refCount int
	ortLib   uintptr
	ortAPI   *OrtApi
	ortEnv   uintptr
	libPath  string
	logLevel = LoggingLevelWarning
)

// SetSharedLibraryPath sets the path to the ONNX Runtime shared library.
// It must be called before InitializeEnvironment and cannot be changed
// while the environment is live.
func SetSharedLibraryPath(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if refCount > 0 {
		return errors.New("cannot change library path after environment is initialized")
	}
	libPath = path
	return nil
}

// SetLogLevel sets the runtime logging verbosity used when the environment
// is created. It cannot be changed while the environment is live.
func SetLogLevel(level LoggingLevel) error {
	mu.Lock()
	defer mu.Unlock()

	if refCount > 0 {
		return errors.New("cannot change log level after environment is initialized")
	}
	logLevel = level
	return nil
}

// IsInitialized reports whether the environment is currently live.
func IsInitialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return refCount > 0
}

// InitializeEnvironment loads the ONNX Runtime library, resolves the API
// table, and creates the shared OrtEnv. Calls are reference counted: every
// call must be paired with a DestroyEnvironment, and only the first call
// does the actual loading.
func InitializeEnvironment() error {
	mu.Lock()
	defer mu.Unlock()

	if refCount > 0 {
		refCount++
		return nil
	}

	if libPath == "" {
		return errors.New("library path not set, call SetSharedLibraryPath first")
	}

	lib, err := loadLibrary(libPath)
	if err != nil {
		return fmt.Errorf("failed to load ONNX Runtime library %q: %w", libPath, err)
	}
	if lib == 0 {
		return fmt.Errorf("failed to load ONNX Runtime library %q", libPath)
	}

	fail := func(err error) error {
		resetOrtFunctions()
		_ = closeLibrary(lib)
		return err
	}

	getAPIBaseAddr, err := getSymbol(lib, "OrtGetApiBase")
	if err != nil {
		return fail(fmt.Errorf("failed to resolve OrtGetApiBase: %w", err))
	}

	var getAPIBase func() *OrtApiBase
	purego.RegisterFunc(&getAPIBase, getAPIBaseAddr)

	base := getAPIBase()
	if base == nil {
		return fail(errors.New("OrtGetApiBase returned nil"))
	}
	registerBaseFunctions(base)

	var getAPI func(version uint32) *OrtApi
	purego.RegisterFunc(&getAPI, base.GetApi)

	api := getAPI(ORT_API_VERSION)
	if api == nil {
		return fail(fmt.Errorf("ONNX Runtime library does not support API version %d", ORT_API_VERSION))
	}
	registerOrtFunctions(api)

	logIDBytes, logIDPtr := GoToCstring("onnx-bridge")
	var env uintptr
	status := createEnvFunc(logLevel, logIDPtr, &env)
	runtime.KeepAlive(logIDBytes)
	if status != 0 {
		return fail(newNativeCallError("CreateEnv", status))
	}
	if env == 0 {
		return fail(errors.New("CreateEnv returned success with a null environment"))
	}

	ortLib = lib
	ortAPI = api
	ortEnv = env
	refCount = 1
	return nil
}

// DestroyEnvironment drops one environment reference. The last drop releases
// the OrtEnv, clears the function bindings, and unloads the library. Calling
// it on an uninitialized environment is a no-op.
func DestroyEnvironment() error {
	ortCallMu.Lock()
	defer ortCallMu.Unlock()

	mu.Lock()
	defer mu.Unlock()

	if refCount == 0 {
		return nil
	}

	refCount--
	if refCount > 0 {
		return nil
	}

	var errs []error

	if ortEnv != 0 && releaseEnvFunc != nil {
		releaseEnvFunc(ortEnv)
	}
	ortEnv = 0
	ortAPI = nil
	resetOrtFunctions()

	if err := closeLibrary(ortLib); err != nil {
		errs = append(errs, fmt.Errorf("failed to close ONNX Runtime library: %w", err))
	}
	ortLib = 0

	return errors.Join(errs...)
}

// GetVersionString returns the loaded runtime's version string, or
// "0.0.0-dev" when no environment is live.
func GetVersionString() string {
	mu.Lock()
	fn := getVersionStringFunc
	mu.Unlock()

	if fn == nil {
		return "0.0.0-dev"
	}
	return CstringToGo(fn())
}

// getErrorCode reads the error code from a status handle. Null status and
// uninitialized bindings report ErrorCodeOK.
func getErrorCode(status uintptr) ErrorCode {
	if status == 0 {
		return ErrorCodeOK
	}

	mu.Lock()
	fn := getErrorCodeFunc
	mu.Unlock()

	if fn == nil {
		return ErrorCodeOK
	}
	return ErrorCode(fn(status))
}

// getErrorMessage reads the message from a status handle without releasing
// it. Null status and uninitialized bindings yield "".
func getErrorMessage(status uintptr) string {
	if status == 0 {
		return ""
	}

	mu.Lock()
	fn := getErrorMessageFunc
	mu.Unlock()

	if fn == nil {
		return ""
	}
	return CstringToGo(fn(status))
}

// releaseStatus frees a status handle. Safe on null status and before
// initialization.
func releaseStatus(status uintptr) {
	if status == 0 {
		return
	}

	mu.Lock()
	fn := releaseStatusFunc
	mu.Unlock()

	if fn == nil {
		return
	}
	fn(status)
}
