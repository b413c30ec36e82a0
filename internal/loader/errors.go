package loader

import "fmt"

// LoadError reports a track file that could not be turned into a track.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NoInputError reports an input directory without track files.
type NoInputError struct {
	Dir string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no .gpx files found in %s", e.Dir)
}
