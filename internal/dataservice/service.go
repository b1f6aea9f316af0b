// Package dataservice holds the pure core of the CRM: KPI aggregation,
// the sponsor usage linkage, seed data, and export/import of the whole
// aggregate. Everything here is a function over models.AppData; nothing
// touches storage or HTTP.
package dataservice

import (
	"github.com/google/uuid"

	"github.com/smartlaw/crm-backend/pkg/models"
)

// NewID returns a fresh opaque id for a new entity. Uniqueness is the only
// contract; callers must not rely on format or ordering.
func NewID() string {
	return uuid.NewString()
}

// CalculateStats derives the KPI view from the aggregate. Pure: the input
// is never mutated and identical inputs yield identical outputs.
func CalculateStats(data models.AppData) models.Stats {
	var stats models.Stats

	stats.TotalCases = len(data.Cases)
	for _, cs := range data.Cases {
		if cs.IsFree {
			stats.FreeCases++
		}
	}
	for _, l := range data.Lawyers {
		if l.Status == models.LawyerActive {
			stats.ActiveLawyers++
		}
	}
	for _, s := range data.Sponsors {
		stats.TotalReplies += s.Replies
		if s.PackageSize > s.Used {
			stats.ActiveSponsors++
		}
		// Zero remaining is exhausted, not low.
		if remaining := s.PackageSize - s.Used; remaining > 0 && remaining <= 5 {
			stats.LowPackages++
		}
	}
	return stats
}

// ApplySponsorUsage moves one unit of package consumption when a case's
// sponsor assignment changes: the old sponsor's counter is decremented
// (never below zero), the new sponsor's incremented. An unchanged
// assignment, including nil to nil, is a no-op. Case deletion is the
// oldID=case.SponsorID, newID=nil call.
//
// The result is a new aggregate with the affected sponsors replaced; the
// input is left untouched.
func ApplySponsorUsage(data models.AppData, oldID, newID *string) models.AppData {
	if sameRef(oldID, newID) {
		return data
	}

	sponsors := make([]models.Sponsor, len(data.Sponsors))
	copy(sponsors, data.Sponsors)

	if oldID != nil {
		for i := range sponsors {
			if sponsors[i].ID == *oldID && sponsors[i].Used > 0 {
				sponsors[i].Used--
				break
			}
		}
	}
	if newID != nil {
		for i := range sponsors {
			if sponsors[i].ID == *newID {
				sponsors[i].Used++
				break
			}
		}
	}

	out := data
	out.Sponsors = sponsors
	return out
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SponsorName resolves a nullable sponsor reference for display. Nil or
// dangling ids yield the Unspecified sentinel rather than an error.
func SponsorName(data models.AppData, id *string) string {
	if id == nil {
		return models.Unspecified
	}
	for _, s := range data.Sponsors {
		if s.ID == *id {
			return s.Name
		}
	}
	return models.Unspecified
}

// LawyerName resolves a nullable lawyer reference for display.
func LawyerName(data models.AppData, id *string) string {
	if id == nil {
		return models.Unspecified
	}
	for _, l := range data.Lawyers {
		if l.ID == *id {
			return l.Name
		}
	}
	return models.Unspecified
}
