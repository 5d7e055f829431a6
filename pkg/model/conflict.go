package model

import "strings"

// ConflictMarker is one entry of the availability response: a map from an
// email address to the reserved date, in whatever text form the remote
// service happens to emit.
type ConflictMarker map[string]string

// Empty reports whether every value is blank or whitespace. The remote
// service pads its responses with well-formed but empty objects; those are
// not genuine conflicts.
func (m ConflictMarker) Empty() bool {
	for _, v := range m {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Conflict is a reservation that overlaps the requested seat and dates,
// flattened for display.
type Conflict struct {
	Email string `json:"email"`
	Date  string `json:"date"`
}

// Flatten converts a non-empty marker into display conflicts.
func (m ConflictMarker) Flatten() []Conflict {
	conflicts := make([]Conflict, 0, len(m))
	for email, date := range m {
		if strings.TrimSpace(date) == "" {
			continue
		}
		conflicts = append(conflicts, Conflict{Email: email, Date: date})
	}
	return conflicts
}
