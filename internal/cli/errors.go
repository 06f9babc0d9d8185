package cli

import (
	"errors"
	"fmt"

	"github.com/dyaskur/api-spec-converter/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

// usageError is an error the user can fix by changing flags, config or input.
// It matches ErrUsage and unwraps to its cause, if any.
type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func wrapUsageError(cause error, format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e usageError) Error() string { return e.msg }

func (e usageError) Unwrap() error { return e.cause }

func (e usageError) Is(target error) bool { return target == ErrUsage }

// describeLoadError turns a *spec.SpecError into a usage error that names the
// failing location and JSON pointer. Other errors are returned unchanged.
func describeLoadError(input string, err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("%s: %s (%s)", input, se.Message, se.Code)
	if se.Location != "" && se.Location != input {
		msg += "\nLocation: " + se.Location
	}
	if se.JSONPointer != "" {
		msg += "\nPointer: " + se.JSONPointer
	}
	return wrapUsageError(err, "%s", msg)
}
