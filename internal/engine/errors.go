package engine

import "errors"

var (
	ErrNothingPlaying  = errors.New("nothing is playing right now")
	ErrUnknownDuration = errors.New("couldn't determine duration for current file")
	ErrInvalidLayer    = errors.New("invalid layer index")
	ErrFileNotFound    = errors.New("file does not exist")
	ErrUnknownOutput   = errors.New("invalid output device name")
	ErrNoOutputBackend = errors.New("no audio output is open")
)
