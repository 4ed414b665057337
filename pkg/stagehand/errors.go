package stagehand

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrUnknownView indicates a key that was never registered.
	ErrUnknownView = errors.New("stagehand: unknown view key")

	// ErrUnknownGroup indicates a group that never had a view pushed onto it.
	ErrUnknownGroup = errors.New("stagehand: unknown group")

	// ErrEmptyStack indicates a pop on a group with no entries.
	ErrEmptyStack = errors.New("stagehand: group stack is empty")

	// ErrNotCached indicates a view that has no live cache entry.
	ErrNotCached = errors.New("stagehand: view is not cached")

	// ErrNilLoader indicates a Manager built without a Loader.
	ErrNilLoader = errors.New("stagehand: nil loader")
)

// LoadError reports a failure to load or instantiate a view's template.
// The failed load leaves no state behind, so the same key can be retried.
type LoadError struct {
	Op  string // "load", "instantiate" or "create"
	Key string // view key
	Err error  // underlying error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stagehand: %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("stagehand: %s %s", e.Op, e.Key)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error.
func NewLoadError(op, key string, err error) *LoadError {
	return &LoadError{Op: op, Key: key, Err: err}
}

// IsLoadError checks if an error is a load error.
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// TemplatePathError reports a registered view whose registration chain never
// names a template path. It is a configuration error: the view can never be
// opened until its registration is fixed.
type TemplatePathError struct {
	Key   string
	Chain []string // registrations walked, starting at Key
}

func (e *TemplatePathError) Error() string {
	return fmt.Sprintf("stagehand: view %q has no template path (searched %v)", e.Key, e.Chain)
}

// IsTemplatePathError checks if an error is a missing template path error.
func IsTemplatePathError(err error) bool {
	var pathErr *TemplatePathError
	return errors.As(err, &pathErr)
}
