package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field returns an error instance that wraps the original error with
// additional information. It returns `nil` if provided error is `nil`.
// Use this function to create an error instance describing a field/attribute
// error.
//
// Use Go naming for the field name. For example, UserName or MaxAge. When the
// path includes an iterable, use the element index starting with 0 as the
// name, for example Members.2.Address
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// AppendField is a shortcut function to club together error(s) with a given
// field error.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// Field returns the field name that this error is created for.
func (err *fieldError) Field() string {
	return err.field
}

// Append clubs together all provided errors. Nil values are ignored. The
// first non nil error decides the code and the cause of the result, which is
// consistent with a fail-fast approach.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	}
	return res
}

type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Cause returns the first error so that Is and the error code follow the
// first failure.
func (m multiErr) Cause() error {
	return m[0]
}

// FieldErrors returns all field errors of given name found in err. Use it in
// tests to check the outcome of a message validation.
func FieldErrors(err error, fieldName string) []error {
	if errIsNil(err) {
		return nil
	}
	var res []error
	switch e := err.(type) {
	case multiErr:
		for _, inner := range e {
			res = append(res, FieldErrors(inner, fieldName)...)
		}
	case *fieldError:
		if e.field == fieldName {
			res = append(res, e)
		}
	}
	return res
}
