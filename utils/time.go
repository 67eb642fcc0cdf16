package utils

import (
	"regexp"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTimeHHMM reports whether s is a 24h "HH:MM" time.
func IsValidTimeHHMM(s string) bool {
	return hhmmPattern.MatchString(s)
}

// TimeBefore reports whether from precedes to. Both must already be valid
// "HH:MM" strings; lexicographic order matches chronological order for them.
func TimeBefore(from, to string) bool {
	return from < to
}
