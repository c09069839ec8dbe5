package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ErrNotFound is returned by Get for a payload that is not loaded.
var ErrNotFound = errors.New("config not found")

// Load error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Content errors
	ErrCodeMissingSection = "E201" // Required top-level struct absent
	ErrCodeCountMismatch  = "E202" // Row count differs from scene count
	ErrCodeIDMismatch     = "E203" // Row ids are not exactly 1..N
	ErrCodeDecodeFailed   = "E204" // Row does not decode into its payload
	ErrCodeBadExpression  = "E205" // Budget expression does not compile
	ErrCodeOutOfRange     = "E206" // Row field or budget value outside its range
)

// LoadError reports a content error found while loading configuration.
type LoadError struct {
	Code    string
	Message string
	Path    string    // CUE path of the offending value, if known
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError reports whether err wraps a *LoadError with the given code.
// An empty code matches any LoadError.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	if !errors.As(err, &le) {
		return false
	}
	return code == "" || le.Code == code
}
