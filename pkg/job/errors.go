package job

import "errors"

var (
	// ErrUnknownTask is returned when enqueueing or executing a task that has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload cannot be decoded into the task's payload type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")
	ErrMigrate        = errors.New("job: river migration failed")

	// ErrDuplicate is returned when a unique job with the same key is already queued.
	ErrDuplicate = errors.New("job: duplicate job skipped")
)
