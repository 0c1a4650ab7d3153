package document

import "strings"

// NormalizeUserID returns the lookup key for a user id. Keys are compared
// case-insensitively and always stored in lowercase.
func NormalizeUserID(userID string) string {
	return strings.ToLower(userID)
}
