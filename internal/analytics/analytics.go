// Package analytics computes summary statistics over enrolled profiles.
package analytics

import (
	"time"

	"github.com/kozaktomas/bioguard/internal/profile"
)

// Summary aggregates the enrolled population at one point in time.
type Summary struct {
	Total         int                         `json:"total"`
	ByDepartment  map[string]int              `json:"by_department"`
	ByAccessLevel map[profile.AccessLevel]int `json:"by_access_level"`
	Newest        *Enrollment                 `json:"newest,omitempty"`
	Oldest        *Enrollment                 `json:"oldest,omitempty"`
}

// Enrollment identifies one profile and when it entered the system.
type Enrollment struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	At       time.Time `json:"at"`
}

// Summarize builds a summary from a profile snapshot. It never mutates its
// input.
func Summarize(profiles []profile.Profile) Summary {
	summary := Summary{
		Total:         len(profiles),
		ByDepartment:  make(map[string]int),
		ByAccessLevel: make(map[profile.AccessLevel]int),
	}

	var newest, oldest *profile.Profile
	for i := range profiles {
		p := &profiles[i]
		summary.ByDepartment[p.Department]++
		summary.ByAccessLevel[p.AccessLevel]++

		if newest == nil || p.EnrolledAt > newest.EnrolledAt {
			newest = p
		}
		if oldest == nil || p.EnrolledAt < oldest.EnrolledAt {
			oldest = p
		}
	}

	if newest != nil {
		summary.Newest = &Enrollment{ID: newest.ID, FullName: newest.FullName, At: newest.EnrolledTime()}
	}
	if oldest != nil {
		summary.Oldest = &Enrollment{ID: oldest.ID, FullName: oldest.FullName, At: oldest.EnrolledTime()}
	}
	return summary
}
