package storage

// ErrNotFound is returned when a memo doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "memo not found"
	}

	return "memo not found: " + e.ID
}
