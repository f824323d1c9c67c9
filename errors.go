package selfpack

import "errors"

// ErrCorruptPayload is returned when a packed payload cannot be decoded.
var ErrCorruptPayload = errors.New("corrupt payload")
