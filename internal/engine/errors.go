package engine

import "errors"

var (
	// ErrMalformedRoom marks a room whose coordinate list is odd-length or
	// has fewer than three vertices.
	ErrMalformedRoom = errors.New("malformed room geometry")

	// ErrUnknownRoom is returned by operations that reference an id the
	// registry does not hold.
	ErrUnknownRoom = errors.New("unknown room")

	// ErrDecodeSuperseded is reported when a background decode finished
	// after a newer background request.
	ErrDecodeSuperseded = errors.New("background decode superseded")
)
