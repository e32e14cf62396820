package errors

import "fmt"

var (
	ErrClassifierTimeout = fmt.Errorf("classifier wait timed out")
	ErrClassifierFailed  = fmt.Errorf("classifier permanently unavailable")
	ErrModelWeights      = fmt.Errorf("model weights unreadable")
	ErrEmptyLexicon      = fmt.Errorf("no phrases have been found")
	ErrStoreUnavailable  = fmt.Errorf("comment store unavailable")
)
