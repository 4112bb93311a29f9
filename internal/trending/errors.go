package trending

import (
	"fmt"

	"emperror.dev/errors"
)

// Error kinds shared by the pipeline stages. Match them with errors.Is.
var (
	ErrFetch       = errors.NewPlain("fetch failed")
	ErrValidation  = errors.NewPlain("invalid dataset")
	ErrPersistence = errors.NewPlain("persistence failed")
	ErrNotFound    = errors.NewPlain("dataset not found")
)

// Error ties an underlying error to one of the kinds above.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// NewError returns an *Error carrying a stack trace. err may be nil.
func NewError(kind error, op string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Op: op, Err: err})
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}
