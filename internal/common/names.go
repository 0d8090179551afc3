package common

import "strings"

// NormalizeName canonicalizes an account name for use as a storage key
// and lock key. Accounts are case-insensitive.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
