package protocol

import "errors"

// ErrFrameRejected is the sentinel wrapped by every decode failure. Callers
// that only care whether a candidate frame was valid can test with
// errors.Is(err, ErrFrameRejected); the wrapped text carries the specific
// reason for logging.
var ErrFrameRejected = errors.New("turbomidi: frame rejected")
