package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Remote service errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrConnectivity    = fmt.Errorf("failed to connect to music player API")
	ErrActionFailed    = fmt.Errorf("player action failed")
	ErrUploadFailed    = fmt.Errorf("upload failed")
	ErrDownloadFailed  = fmt.Errorf("download failed")
	ErrInvalidSnapshot = fmt.Errorf("invalid snapshot")
	ErrTimeout         = fmt.Errorf("request timed out")

	// Lifecycle errors
	ErrPollerStarted = fmt.Errorf("poller already started")
	ErrPollerStopped = fmt.Errorf("poller stopped")

	// Input validation errors
	ErrValidation        = fmt.Errorf("validation failed")
	ErrInvalidURL        = fmt.Errorf("%w: invalid URL", ErrValidation)
	ErrEmptyURL          = fmt.Errorf("%w: empty URL", ErrValidation)
	ErrInvalidVolume     = fmt.Errorf("%w: volume must be between 0 and 100", ErrValidation)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrValidation)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrValidation)
	ErrNothingSelected   = fmt.Errorf("%w: no files selected", ErrValidation)
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)

// UserMessage maps an error to the short message shown to a person.
//
// Wrapped transport and server details are never included; they belong in the logs. Argument and
// configuration errors are produced locally and are returned as is.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArgument), errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrMissingConfig), errors.Is(err, ErrInvalidConfig):
		return err.Error()
	case errors.Is(err, ErrConnectivity):
		return "Failed to connect to music player API"
	case errors.Is(err, ErrEmptyURL):
		return "Please enter a valid URL"
	case errors.Is(err, ErrInvalidURL):
		return "The URL entered is not valid"
	case errors.Is(err, ErrInvalidVolume):
		return "Volume must be between 0 and 100"
	case errors.Is(err, ErrNothingSelected):
		return "No files selected"
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file format"
	case errors.Is(err, ErrFileTooLarge):
		return "File is too large"
	case errors.Is(err, ErrUploadFailed):
		return "Error uploading files. Please try again."
	case errors.Is(err, ErrDownloadFailed):
		return "Error downloading audio. Check the URL and try again."
	case errors.Is(err, ErrActionFailed):
		return "Player action failed"
	case errors.Is(err, ErrPollerStopped):
		return "Player connection closed"
	case errors.Is(err, ErrTimeout):
		return "The music player took too long to respond"
	default:
		return "Something went wrong"
	}
}
