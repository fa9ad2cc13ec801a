// Package document turns PDF bytes into page text or page images.
package document

import (
	"errors"
	"fmt"
)

// ErrDocumentDecode is returned when the input is not a decodable PDF.
var ErrDocumentDecode = errors.New("document decode failed")

// DecodeError carries the underlying decoder failure.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrDocumentDecode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrDocumentDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDocumentDecode }

func decodeErr(op string, err error) error {
	return &DecodeError{Op: op, Err: err}
}
