package generate

import "errors"

// emptyResponseError means the model answered without an image part.
type emptyResponseError struct{ reason string }

func (e emptyResponseError) Error() string {
	if e.reason != "" {
		return "model returned no image (finish reason " + e.reason + ")"
	}
	return "model returned no image"
}

// IsEmptyResponse reports whether err indicates a response without image data.
func IsEmptyResponse(err error) bool {
	var e emptyResponseError
	return errors.As(err, &e)
}

// decodeError wraps an undecodable image payload.
type decodeError struct {
	mime string
	err  error
}

func (e decodeError) Error() string { return "decode " + e.mime + ": " + e.err.Error() }

func (e decodeError) Unwrap() error { return e.err }

// IsDecode reports whether err indicates an undecodable model image.
func IsDecode(err error) bool {
	var e decodeError
	return errors.As(err, &e)
}
