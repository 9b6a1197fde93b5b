package closedlist

import "errors"

var (
	ErrEmpty           = errors.New("collection is empty")
	ErrInvalidStep     = errors.New("step must be positive")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnsupported     = errors.New("operation not supported, use the cursor")
)
