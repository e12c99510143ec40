package residents

import "errors"

var (
	ErrResidentNotFound  = errors.New("resident not found")
	ErrNextOfKinNotFound = errors.New("next of kin not found")
)
