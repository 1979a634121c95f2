package metadata

import "fmt"

// GenerationError reports a failed generation for one asset: the remote call
// failed, or its output was not valid JSON of the expected shape.
type GenerationError struct {
	Asset  string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed for %s: %s: %v", e.Asset, e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed for %s: %s", e.Asset, e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
