// Package notify defines how user-facing status messages are emitted for
// asynchronous operations.
package notify

import (
	"context"
	"fmt"
	"log"
	"runtime"
)

// Sink displays transient status messages to a user.
type Sink interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
	// Loading shows a pending message that is later replaced by exactly one
	// terminal message through the returned Pending.
	Loading(msg string) Pending
}

type Pending interface {
	Success(msg string)
	Error(msg string)
}

// Messages are the three phases of a Promise notification.
type Messages struct {
	Pending string
	Success string
	Error   func(err error) string
}

// Promise shows m.Pending, runs op, then replaces the pending message with
// m.Success or m.Error. A panic in op is converted to an error. The error
// from op is returned after it has been shown.
func Promise(ctx context.Context, sink Sink, m Messages, op func(ctx context.Context) error) error {
	pending := sink.Loading(m.Pending)

	err := Guard(ctx, op)
	if err != nil {
		msg := err.Error()
		if m.Error != nil {
			msg = m.Error(err)
		}
		pending.Error(msg)
		return err
	}

	pending.Success(m.Success)
	return nil
}

// WithPrefix formats errors as "<prefix>: <message>".
func WithPrefix(prefix string) func(error) string {
	return func(err error) string {
		return fmt.Sprintf("%s: %s", prefix, err.Error())
	}
}

// Guard runs op and converts a panic into an error after logging its stack.
func Guard(ctx context.Context, op func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("Panic in notified operation:\nError: %v\nStack Trace:\n%s", r, string(buf[:n]))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return op(ctx)
}
