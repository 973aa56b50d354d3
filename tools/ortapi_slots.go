// Command ortapi_slots prints the 0-based pointer slot of every function in
// the OrtApi table, parsed from onnxruntime_c_api.h. The output is used to
// maintain the hand-grouped OrtApi struct in ort/types.go and the anchor
// offsets checked by TestOrtApiLayoutAnchors when moving to a newer header.
//
// NOTE: parsing is regex-based, which works for the current ONNX Runtime C
// API but may be fragile with future header changes. A proper C parser such
// as tree-sitter-c would be more robust if the header format drifts.
package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// anchorSlots lists the functions the ort package binds, with the slot each
// binding assumes. A mismatch here means the header reordered the table and
// ort/types.go must be re-audited before anything else.
var anchorSlots = map[string]int{
	"CreateStatus":                   0,
	"CreateEnv":                      3,
	"Run":                            9,
	"CreateTensorAsOrtValue":         48,
	"CreateTensorWithDataAsOrtValue": 49,
	"IsTensor":                       50,
	"GetTensorMutableData":           51,
	"FillStringTensor":               52,
	"GetStringTensorDataLength":      53,
	"GetStringTensorContent":         54,
	"GetTensorTypeAndShape":          65,
	"CreateMemoryInfo":               68,
	"GetAllocatorWithDefaultOptions": 78,
	"ReleaseEnv":                     92,
	"ReleaseValue":                   96,
	"ReleaseTensorTypeAndShapeInfo":  99,
	"ReleaseSessionOptions":          100,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <path-to-onnxruntime_c_api.h>\n", os.Args[0])
		os.Exit(1)
	}

	functions, err := parseOrtApiFunctions(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := validateFunctions(functions); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	for slot, name := range functions {
		marker := ""
		if expected, ok := anchorSlots[name]; ok {
			if expected == slot {
				marker = "  <- anchor"
			} else {
				marker = fmt.Sprintf("  <- anchor MOVED (bindings assume %d)", expected)
			}
		}
		fmt.Printf("%4d  %s%s\n", slot, name, marker)
	}
}

func parseOrtApiFunctions(headerPath string) ([]string, error) {
	file, err := os.Open(headerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open header file: %w", err)
	}
	defer file.Close()

	// The table mixes ORT_API2_STATUS macros, raw function-pointer
	// declarations, and ORT_CLASS_RELEASE macros. Each contributes exactly
	// one pointer slot.
	structStart := regexp.MustCompile(`^struct OrtApi \{`)
	structEnd := regexp.MustCompile(`^\s*\};`)
	statusMacro := regexp.MustCompile(`ORT_API2_STATUS\((\w+),`)
	rawPointer := regexp.MustCompile(`^\s+(?:OrtStatus|OrtErrorCode|const char|void)\s*\*?\s*\(\s*ORT_API_CALL\s*\*\s*(\w+)\)`)
	classRelease := regexp.MustCompile(`ORT_CLASS_RELEASE\((\w+)\)`)

	var functions []string
	inStruct := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if !inStruct {
			inStruct = structStart.MatchString(line)
			continue
		}
		if structEnd.MatchString(line) {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		switch {
		case statusMacro.MatchString(line):
			functions = append(functions, statusMacro.FindStringSubmatch(line)[1])
		case rawPointer.MatchString(line):
			functions = append(functions, rawPointer.FindStringSubmatch(line)[1])
		case classRelease.MatchString(line):
			functions = append(functions, "Release"+classRelease.FindStringSubmatch(line)[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	if !inStruct {
		return nil, fmt.Errorf("struct OrtApi not found in %s", headerPath)
	}

	return functions, nil
}

func validateFunctions(functions []string) error {
	if len(functions) < 290 || len(functions) > 320 {
		fmt.Fprintf(os.Stderr, "Warning: parsed %d functions, expected ~305. Header may have changed shape.\n", len(functions))
	}

	seen := make(map[string]int, len(functions))
	for slot, name := range functions {
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("duplicate function name %s at slots %d and %d", name, prev, slot)
		}
		seen[name] = slot
	}

	var moved []string
	for name, expected := range anchorSlots {
		actual, found := seen[name]
		if !found {
			return fmt.Errorf("anchor function %s not found; parser or header is broken", name)
		}
		if actual != expected {
			moved = append(moved, fmt.Sprintf("%s: slot %d, bindings assume %d", name, actual, expected))
		}
	}
	if len(moved) > 0 {
		return fmt.Errorf("anchor slots moved, re-audit ort/types.go:\n  %s", strings.Join(moved, "\n  "))
	}

	return nil
}
