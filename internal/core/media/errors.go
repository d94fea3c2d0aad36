package media

import "errors"

var (
	// ErrInvalidImage is returned when an upload cannot be decoded as a supported image
	ErrInvalidImage = errors.New("file is not a supported image")

	// ErrImageTooLarge is returned when an upload exceeds the size limit
	ErrImageTooLarge = errors.New("image is too large")
)

// IsInvalidUpload reports whether err was caused by the uploaded content itself
func IsInvalidUpload(err error) bool {
	return errors.Is(err, ErrInvalidImage) || errors.Is(err, ErrImageTooLarge)
}
