package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrKeywordRequired  = errors.New("keyword is required")
	ErrInvalidSelection = errors.New("invalid selection")
)

// IsInputError reports whether err was caused by malformed request input
// rather than a failing collaborator.
func IsInputError(err error) bool {
	return errors.Is(err, ErrKeywordRequired) || errors.Is(err, ErrInvalidSelection)
}
