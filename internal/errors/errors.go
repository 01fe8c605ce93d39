// Package errors defines the coded error type shared by every deptrim stage.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IOError indicates the project root is missing or unreadable
	IOError ErrorCode = "IO_ERROR"
	// FileReadError indicates a single source file could not be read
	FileReadError ErrorCode = "FILE_READ_ERROR"
	// ParseError indicates the syntax tree provider rejected a file
	ParseError ErrorCode = "PARSE_ERROR"
	// ManifestError indicates package.json is missing or malformed
	ManifestError ErrorCode = "MANIFEST_ERROR"
	// RemovalError indicates the package manager failed to uninstall
	RemovalError ErrorCode = "REMOVAL_ERROR"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// Canceled indicates the analysis was canceled before completion
	Canceled ErrorCode = "CANCELED"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file by hand
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error is a deptrim error with a stable code and an optional file path
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an Error with the default suggested fixes for its code
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithPath attaches the offending path
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's chain holds an *Error with the given code
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	IOError: {
		{
			Type:        RunCommand,
			Command:     "deptrim analyze --dir <project-root>",
			Description: "Point deptrim at an existing, readable project directory",
		},
	},
	ManifestError: {
		{
			Type:        EditFile,
			Path:        "package.json",
			Description: "Make sure package.json exists and is valid JSON",
		},
	},
	RemovalError: {
		{
			Type:        RunCommand,
			Command:     "deptrim remove --dry-run",
			Description: "package.json was left untouched; check the printed command and retry it by hand",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditFile,
			Path:        ".deptrim/config.json",
			Description: "Fix the reported configuration field",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
