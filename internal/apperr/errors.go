package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAnswerWithoutCall  = errors.New("answer without pending call")
	ErrBadResumeTarget    = errors.New("invalid resume target")
	ErrGenerationNotFound = errors.New("generation not found")
)
