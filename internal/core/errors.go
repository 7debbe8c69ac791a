package core

import "fmt"

// SourceError marks a video that cannot be processed at all: unreadable,
// missing a video stream, or zero duration. Fatal before segmentation.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("unusable source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// DecodeError marks a decoder collaborator failure mid-stream. Fatal;
// partial output is discarded and no partial package is written.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
