package video

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is wrapped by ExtractionError for links that are
// neither YouTube nor TikTok
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ExtractionError is the only failure that aborts a research run
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract metadata for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
