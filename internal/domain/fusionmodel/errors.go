package fusionmodel

import "errors"

var (
	ErrModelNotFound = errors.New("model file not found")
	ErrInvalidModel  = errors.New("invalid model file")
	ErrInvalidPath   = errors.New("invalid model path")
)
