package utils

// Truncate cuts s at maxLen bytes and appends an ellipsis. Strings that
// already fit come back unchanged.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
