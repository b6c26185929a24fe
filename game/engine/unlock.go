package engine

// IsUnlocked reports whether a level with the given unlock date is
// playable on the given day. Both arguments are ISO dates (YYYY-MM-DD),
// which makes lexical order equal to chronological order, so the check
// is a plain string comparison. The current date is always injected by
// the caller; the engine never reads the wall clock.
func IsUnlocked(unlockDate, today string) bool {
	return unlockDate <= today
}

// isISODate reports whether s looks like a YYYY-MM-DD date. It checks
// shape only; config validation is the gate, not a calendar.
func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, ch := range s {
		if i == 4 || i == 7 {
			continue
		}
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
