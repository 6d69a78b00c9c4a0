package bridge

import (
	"errors"
	"syscall"
)

// ErrBootstrapExhausted reports that the camera stopped short of announcing
// its full format within the bootstrap budget. Treated like any failed
// connection attempt: the supervisor retries with backoff.
var ErrBootstrapExhausted = errors.New("stream ended format bootstrap early")

// FatalError marks a failure the supervisor must not retry: the pipeline's
// resources need process-level intervention (typically a lost output device
// binding). Authentication rejection is the other permanent failure and is
// carried by camera.ErrAuthRejected instead.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a FatalError anywhere in its chain.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// classifyDeviceError upgrades a lost output device to a permanent failure.
// Every other sink error stays transient and takes the retry path.
func classifyDeviceError(err error) error {
	if errors.Is(err, syscall.ENODEV) {
		return &FatalError{Err: err}
	}
	return err
}
