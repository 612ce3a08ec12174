package fileserver

import (
	"errors"
	"os"
	"syscall"

	E "github.com/sagernet/sing/common/exceptions"
)

var (
	ErrAddressInUse = E.New("address already in use")
	ErrPermission   = E.New("permission denied")
)

// BindError is returned by Start when the listening socket cannot be opened.
// It matches ErrAddressInUse or ErrPermission under errors.Is when the cause
// is known.
type BindError struct {
	Addr  string
	Kind  error
	Cause error
}

func newBindError(addr string, err error) error {
	e := &BindError{Addr: addr, Cause: err}
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		e.Kind = ErrAddressInUse
	case errors.Is(err, syscall.EACCES), errors.Is(err, os.ErrPermission):
		e.Kind = ErrPermission
	}
	return e
}

func (e *BindError) Error() string {
	if e.Kind != nil {
		return "listen on " + e.Addr + ": " + e.Kind.Error()
	}
	return "listen on " + e.Addr + ": " + e.Cause.Error()
}

func (e *BindError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *BindError) Unwrap() error {
	return e.Cause
}
