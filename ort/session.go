package ort

import (
	"fmt"
	"runtime"
	"sync"
)

// AdvancedSession is an inference session with inputs and outputs bound at
// creation time. Run repeatedly executes the model over the same bound
// values; callers mutate the input tensors' data between runs.
type AdvancedSession struct {
	handle       uintptr // Pointer to OrtSession
	inputNames   []string
	outputNames  []string
	inputValues  []Value
	outputValues []Value

	// runMu serializes Run calls on this session and interlocks Run with
	// Destroy. The runtime permits concurrent Run on one OrtSession, but
	// the bound output values are not safe to fill concurrently.
	runMu sync.Mutex
}

// NewAdvancedSession creates a session for the model at modelPath with
// pre-bound input and output values. Passing nil options uses runtime
// defaults.
func NewAdvancedSession(modelPath string, inputNames []string, outputNames []string,
	inputValues []Value, outputValues []Value, options *SessionOptions) (*AdvancedSession, error) {
	if err := validateSessionArgs(modelPath, inputNames, outputNames, inputValues, outputValues); err != nil {
		return nil, err
	}
	if _, err := valueHandles(inputValues, "input"); err != nil {
		return nil, err
	}
	if _, err := valueHandles(outputValues, "output"); err != nil {
		return nil, err
	}
	if options != nil && options.handle == 0 {
		return nil, fmt.Errorf("session options handle is not initialized")
	}

	handle, err := createNativeSession(modelPath, options)
	if err != nil {
		return nil, err
	}

	session := &AdvancedSession{
		handle:       handle,
		inputNames:   cloneStrings(inputNames),
		outputNames:  cloneStrings(outputNames),
		inputValues:  cloneValues(inputValues),
		outputValues: cloneValues(outputValues),
	}

	// Finalizer is a safety net to avoid leaking OrtSession if callers forget Destroy().
	runtime.SetFinalizer(session, func(s *AdvancedSession) {
		_ = s.Destroy()
	})

	return session, nil
}

// Run executes one inference pass over the bound inputs and outputs.
// Calls on the same session are serialized.
func (s *AdvancedSession) Run() error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.handle == 0 {
		return fmt.Errorf("session has been destroyed")
	}

	inputHandles, err := valueHandles(s.inputValues, "input")
	if err != nil {
		return err
	}
	outputHandles, err := valueHandles(s.outputValues, "output")
	if err != nil {
		return err
	}

	ortCallMu.RLock()
	defer ortCallMu.RUnlock()

	mu.Lock()
	run := runSessionFunc
	api := ortAPI
	mu.Unlock()
	if api == nil || run == nil {
		return fmt.Errorf("ONNX Runtime not initialized")
	}

	inputNameBackings, inputNamePtrs := makeCStringPointerArray(s.inputNames)
	outputNameBackings, outputNamePtrs := makeCStringPointerArray(s.outputNames)

	status := run(
		s.handle,
		0, // default run options
		&inputNamePtrs[0],
		&inputHandles[0],
		uintptr(len(inputHandles)),
		&outputNamePtrs[0],
		uintptr(len(outputHandles)),
		&outputHandles[0],
	)
	runtime.KeepAlive(inputNameBackings)
	runtime.KeepAlive(outputNameBackings)
	runtime.KeepAlive(s.inputValues)
	runtime.KeepAlive(s.outputValues)
	if status != 0 {
		return newNativeCallError("Run", status)
	}

	return nil
}

// Destroy releases the session. It waits for an in-flight Run to finish and
// is a no-op on an already destroyed session. The bound values are not
// destroyed; they belong to the caller.
func (s *AdvancedSession) Destroy() error {
	if s == nil {
		return nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.handle == 0 {
		return nil
	}

	// Lock order here is ortCallMu -> mu.
	ortCallMu.Lock()
	defer ortCallMu.Unlock()

	mu.Lock()
	handle := s.handle
	releaseSession := releaseSessionFunc
	s.handle = 0
	s.inputNames = nil
	s.outputNames = nil
	s.inputValues = nil
	s.outputValues = nil
	runtime.SetFinalizer(s, nil)
	mu.Unlock()

	if releaseSession != nil {
		releaseSession(handle)
	}

	return nil
}

// DynamicAdvancedSession is an inference session whose outputs are allocated
// by the runtime on every Run. Output element kinds and shapes are
// discovered from the produced values rather than declared up front.
type DynamicAdvancedSession struct {
	handle      uintptr
	inputNames  []string
	outputNames []string
	inputValues []Value

	runMu sync.Mutex
}

// NewDynamicAdvancedSession creates a session that lets the runtime allocate
// its outputs. Inputs are bound at creation like AdvancedSession.
func NewDynamicAdvancedSession(modelPath string, inputNames []string, outputNames []string,
	inputValues []Value, options *SessionOptions) (*DynamicAdvancedSession, error) {
	if err := validateSessionArgs(modelPath, inputNames, outputNames, inputValues, nil); err != nil {
		return nil, err
	}
	if _, err := valueHandles(inputValues, "input"); err != nil {
		return nil, err
	}
	if options != nil && options.handle == 0 {
		return nil, fmt.Errorf("session options handle is not initialized")
	}

	handle, err := createNativeSession(modelPath, options)
	if err != nil {
		return nil, err
	}

	session := &DynamicAdvancedSession{
		handle:      handle,
		inputNames:  cloneStrings(inputNames),
		outputNames: cloneStrings(outputNames),
		inputValues: cloneValues(inputValues),
	}

	runtime.SetFinalizer(session, func(s *DynamicAdvancedSession) {
		_ = s.Destroy()
	})

	return session, nil
}

// Run executes one inference pass and returns the runtime-allocated outputs
// in declaration order. Each DynOutput owns one reference on its value;
// callers Close every output.
func (s *DynamicAdvancedSession) Run() ([]*DynOutput, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.handle == 0 {
		return nil, fmt.Errorf("session has been destroyed")
	}

	inputHandles, err := valueHandles(s.inputValues, "input")
	if err != nil {
		return nil, err
	}

	// Zero output handles ask the runtime to allocate each output value.
	rawOutputs := make([]uintptr, len(s.outputNames))

	// The read lock is scoped to the native call: wrapRunOutputs may release
	// values, which takes the write side of ortCallMu.
	err = func() error {
		ortCallMu.RLock()
		defer ortCallMu.RUnlock()

		mu.Lock()
		run := runSessionFunc
		api := ortAPI
		mu.Unlock()
		if api == nil || run == nil {
			return fmt.Errorf("ONNX Runtime not initialized")
		}

		inputNameBackings, inputNamePtrs := makeCStringPointerArray(s.inputNames)
		outputNameBackings, outputNamePtrs := makeCStringPointerArray(s.outputNames)

		status := run(
			s.handle,
			0,
			&inputNamePtrs[0],
			&inputHandles[0],
			uintptr(len(inputHandles)),
			&outputNamePtrs[0],
			uintptr(len(rawOutputs)),
			&rawOutputs[0],
		)
		runtime.KeepAlive(inputNameBackings)
		runtime.KeepAlive(outputNameBackings)
		runtime.KeepAlive(s.inputValues)
		if status != 0 {
			return newNativeCallError("Run", status)
		}
		return nil
	}()
	if err != nil {
		return nil, err
	}

	return wrapRunOutputs(rawOutputs)
}

// wrapRunOutputs takes ownership of runtime-allocated output values. Every
// raw value ends up either owned by a returned DynOutput or released; a
// failure on one output never leaks or double-releases another.
func wrapRunOutputs(rawOutputs []uintptr) ([]*DynOutput, error) {
	outputs := make([]*DynOutput, 0, len(rawOutputs))

	fail := func(index int, err error) error {
		for _, o := range outputs {
			o.Close()
		}
		for _, raw := range rawOutputs[index:] {
			if raw != 0 {
				newValueHandle(raw).Release()
			}
		}
		return err
	}

	for i, raw := range rawOutputs {
		if raw == 0 {
			return nil, fail(i, fmt.Errorf("output %d was not produced", i))
		}
		handle := newValueHandle(raw)
		out, err := newDynOutputFromHandle(handle)
		if err != nil {
			handle.Release()
			return nil, fail(i+1, fmt.Errorf("output %d: %w", i, err))
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Destroy releases the session. It waits for an in-flight Run to finish.
func (s *DynamicAdvancedSession) Destroy() error {
	if s == nil {
		return nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.handle == 0 {
		return nil
	}

	// Lock order here is ortCallMu -> mu.
	ortCallMu.Lock()
	defer ortCallMu.Unlock()

	mu.Lock()
	handle := s.handle
	releaseSession := releaseSessionFunc
	s.handle = 0
	s.inputNames = nil
	s.outputNames = nil
	s.inputValues = nil
	runtime.SetFinalizer(s, nil)
	mu.Unlock()

	if releaseSession != nil {
		releaseSession(handle)
	}

	return nil
}

// createNativeSession loads the model and creates the OrtSession, creating
// transient default session options when none are supplied.
func createNativeSession(modelPath string, options *SessionOptions) (uintptr, error) {
	ortCallMu.RLock()
	defer ortCallMu.RUnlock()

	mu.Lock()
	api := ortAPI
	env := ortEnv
	createSession := createSessionFunc
	createOptions := createSessionOptionsFunc
	releaseOptions := releaseSessionOptionsFunc
	mu.Unlock()
	if api == nil || createSession == nil {
		return 0, fmt.Errorf("ONNX Runtime not initialized")
	}

	optionsHandle := uintptr(0)
	if options != nil {
		optionsHandle = options.handle
	} else if createOptions != nil && releaseOptions != nil {
		status := createOptions(&optionsHandle)
		if status != 0 {
			return 0, newNativeCallError("CreateSessionOptions", status)
		}
		defer releaseOptions(optionsHandle)
	}

	pathPtr, pathBacking, err := goStringToORTChar(modelPath)
	if err != nil {
		return 0, fmt.Errorf("failed to encode model path: %w", err)
	}

	var handle uintptr
	status := createSession(env, pathPtr, optionsHandle, &handle)
	runtime.KeepAlive(pathBacking)
	if status != 0 {
		errMsg := getErrorMessage(status)
		releaseStatus(status)
		return 0, fmt.Errorf("failed to create session: %s", errMsg)
	}

	return handle, nil
}

// validateSessionArgs checks the shape of the session arguments. A nil
// outputValues slice means the caller uses runtime-allocated outputs.
func validateSessionArgs(modelPath string, inputNames, outputNames []string, inputValues, outputValues []Value) error {
	if modelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if len(inputNames) == 0 {
		return fmt.Errorf("at least one input name is required")
	}
	if len(outputNames) == 0 {
		return fmt.Errorf("at least one output name is required")
	}
	if len(inputValues) != len(inputNames) {
		return fmt.Errorf("input names/values count mismatch: %d names, %d values", len(inputNames), len(inputValues))
	}
	if outputValues != nil && len(outputValues) != len(outputNames) {
		return fmt.Errorf("output names/values count mismatch: %d names, %d values", len(outputNames), len(outputValues))
	}
	return nil
}

// valueHandles extracts the raw OrtValue pointers from bound values,
// rejecting foreign Value implementations and destroyed values.
func valueHandles(values []Value, label string) ([]uintptr, error) {
	handles := make([]uintptr, len(values))
	for i, v := range values {
		hv, ok := v.(handleValue)
		if !ok {
			return nil, fmt.Errorf("unsupported value implementation %T at %s index %d", v, label, i)
		}
		handle := hv.ortValueHandle()
		if handle == 0 {
			return nil, fmt.Errorf("%s value at index %d has been destroyed", label, i)
		}
		handles[i] = handle
	}
	return handles, nil
}

// makeCStringPointerArray converts names to null-terminated C strings and an
// array of pointers to them. Both returned slices are nil for empty input;
// the backings slice must be kept alive across the native call.
func makeCStringPointerArray(names []string) ([][]byte, []uintptr) {
	if len(names) == 0 {
		return nil, nil
	}

	backings := make([][]byte, len(names))
	ptrs := make([]uintptr, len(names))
	for i, name := range names {
		b, ptr := GoToCstring(name)
		backings[i] = b
		ptrs[i] = ptr
	}
	return backings, ptrs
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneValues(in []Value) []Value {
	out := make([]Value, len(in))
	copy(out, in)
	return out
}
