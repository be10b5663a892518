package auth

import "time"

// IsOutsideThresholdPeriod reports whether t falls outside the window
// ending now, where pattern is a time.ParseDuration expression like the
// sign-in CoolDownPeriod. Login attempt counters reset once the last
// attempt lands outside the window.
func IsOutsideThresholdPeriod(t time.Time, pattern string) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	threshold := time.Now().Add(-duration)
	return !t.After(threshold), nil
}
