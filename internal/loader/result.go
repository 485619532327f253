package loader

import (
	"errors"
	"runtime/debug"
	"strings"
)

// Failure is the error side of a Result: a message for the page and a
// developer-facing trace.
type Failure struct {
	Message string
	Trace   string
	Err     error
}

// Result is either Ok(props) or Err(message, trace).
type Result[P any] struct {
	props   P
	failure *Failure
}

func Ok[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err captures err together with the wrap chain and the current goroutine
// stack.
func Err[P any](err error) Result[P] {
	return Result[P]{failure: &Failure{
		Message: err.Error(),
		Trace:   trace(err),
		Err:     err,
	}}
}

func (r Result[P]) IsOk() bool {
	return r.failure == nil
}

func (r Result[P]) Props() P {
	return r.props
}

// Failure returns nil for an Ok result.
func (r Result[P]) Failure() *Failure {
	return r.failure
}

func trace(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(err.Error())
		b.WriteByte('\n')
		err = errors.Unwrap(err)
	}
	b.WriteByte('\n')
	b.Write(debug.Stack())
	return b.String()
}
