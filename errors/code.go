package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessCode is returned for a nil error.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed under an
	// internal error code and a generic message instead of detailed error
	// string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Info returns the error information as consumed by a client. Returned code
// and log message should be used as a response.
//
// When not running in a debug mode all messages of errors that do not
// provide code information are replaced with generic "internal error".
func Info(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}

	if code := errCode(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

// Lookup returns the root error registered with given code.
func Lookup(code uint32) (*Error, bool) {
	e, ok := usedCodes[code]
	return e, ok
}

type coder interface {
	Code() uint32
}

// errCode test if given error contains a code and returns the value of it if
// available. This function is testing for the causer interface as well and
// unwraps the error.
func errCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// errIsNil returns true if value represented by the given error is nil.
//
// Most of the time a simple == check is enough. There is a very narrowed
// spectrum of cases (mostly in tests) where a more sophisticated check is
// required.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Redact replace all errors that do not initialize with a registered error
// with a generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that this package
// originates.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalLog)
	}
	if errCode(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}
