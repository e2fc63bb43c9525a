package template

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error codes carried by *Error.
const (
	CodeMissingParam  = "MissingParam"
	CodeMissingConfig = "MISSINGCONFIG"
	CodeMissingFolder = "MISSINGFOLDER"
	CodeNotFound      = "NoSuchKey"
	CodeRender        = "RenderError"
	CodeUnknown       = "Unknown"
)

// Error is the only error type returned by this package.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("template: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var te *Error
	return errors.As(err, &te) && te.Code == code
}

func missing(name, code string) *Error {
	return &Error{Code: code, Message: "invalid parameter - missing " + name}
}

// wrap passes *Error through and classifies everything else.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	code := CodeUnknown
	if errors.Is(err, fs.ErrNotExist) {
		code = CodeNotFound
	}
	return &Error{Code: code, Message: "fetch failed", Err: err}
}
