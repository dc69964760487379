package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describeSpecError maps structured document errors into friendly messages.
func describeSpecError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := "spec: " + strings.TrimPrefix(se.Message, "spec: ")
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}
