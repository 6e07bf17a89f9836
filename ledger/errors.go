package ledger

import "errors"

var (
	// ErrIntentNotFound is returned by mutating operations whose target
	// intent does not exist. Read paths report absence without an error.
	ErrIntentNotFound = errors.New("intent not found")
	// ErrDescriptionEmpty is returned when creating an intent without a
	// description.
	ErrDescriptionEmpty = errors.New("intent description is empty")
	// ErrRefIDEmpty is returned for empty hypothesis or workflow ids.
	ErrRefIDEmpty = errors.New("reference id is empty")
	// ErrAlreadyLinked is returned when linking an id already in the
	// intent's current membership set.
	ErrAlreadyLinked = errors.New("reference already linked")
	// ErrNotLinked is returned when unlinking an id absent from the
	// intent's current membership set.
	ErrNotLinked = errors.New("reference not linked")
)
