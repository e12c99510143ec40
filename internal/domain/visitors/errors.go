package visitors

import "errors"

var (
	ErrVisitorNotFound   = errors.New("visitor not found")
	ErrInvalidTransition = errors.New("visitor status transition not allowed")
)
