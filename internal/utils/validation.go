package utils

import "github.com/casparjones/rdumper/internal/constants"

// IsValidName checks a connection or task name against the same
// lowercase/digit/hyphen rule the CLI has always enforced for user-chosen
// identifiers.
func IsValidName(name string) bool {
	if len(name) < constants.MinNameLength || len(name) > constants.MaxNameLength {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}
