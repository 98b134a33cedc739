package eventstream

import "errors"

// ErrNilMemoEvent indicates a nil memo event payload was provided to a publisher.
var ErrNilMemoEvent = errors.New("nil memo event")
