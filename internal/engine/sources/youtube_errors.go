package sources

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is; the typed errors below unwrap to them.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnexpectedSchema = errors.New("unexpected schema")
	ErrElementNotFound  = errors.New("element not found")
)

// MalformedPayloadError means the embedded JSON blob was found but does not decode.
type MalformedPayloadError struct {
	Offset int // byte offset of the blob in the response body
	Size   int // bytes between the signature and the closing sentinel
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: embedded JSON at offset %d (%d bytes) does not decode", e.Offset, e.Size)
}

func (e *MalformedPayloadError) Unwrap() error { return ErrMalformedPayload }

// UnexpectedSchemaError means the payload decoded but a step of the expected path is absent.
type UnexpectedSchemaError struct {
	Step   string   // the step that failed
	Path   []string // steps resolved before it
	Detail string   // optional: why a present value was rejected
}

func (e *UnexpectedSchemaError) Error() string {
	at := "root"
	if len(e.Path) > 0 {
		at = strings.Join(e.Path, " → ")
	}
	if e.Detail != "" {
		return fmt.Sprintf("unexpected schema: %q after %s: %s", e.Step, at, e.Detail)
	}
	return fmt.Sprintf("unexpected schema: %q missing after %s", e.Step, at)
}

func (e *UnexpectedSchemaError) Unwrap() error { return ErrUnexpectedSchema }

// ElementNotFoundError means a required structural anchor is missing from the markup.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s", e.Selector)
}

func (e *ElementNotFoundError) Unwrap() error { return ErrElementNotFound }
