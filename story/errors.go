package story

import "errors"

var (
	// ErrNotReady means no narrative profiles exist yet. It is an empty
	// state, not a failure: no story is created and nothing is logged as
	// an error.
	ErrNotReady = errors.New("no narrative profiles stored")

	// ErrNotFound reports an unknown story id.
	ErrNotFound = errors.New("story not found")

	// ErrAlreadyGenerating reports that another continuation holds the
	// story's generation lock.
	ErrAlreadyGenerating = errors.New("story generation already in progress")

	// ErrStoryEnded rejects continuation of a finished story.
	ErrStoryEnded = errors.New("story has ended")

	// ErrNoPool rejects word operations before any story has seeded the
	// vocabulary pool.
	ErrNoPool = errors.New("vocabulary pool does not exist yet")
)
