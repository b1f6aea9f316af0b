// Package analytics derives dashboard views from the aggregate: the KPI
// stats endpoint, per-sponsor marketing rows, and the biweekly review
// reminders. Everything is recomputed on request, nothing is persisted.
package analytics

import (
	"github.com/smartlaw/crm-backend/pkg/models"
)

// BuildMarketingStats computes one row per sponsor for the [start, end]
// window (inclusive, YYYY-MM-DD strings). Every column is derived from real
// data:
//
//	totalClients      package capacity
//	repliedClients    reply counter
//	subscribedClients cases consumed against the package
//	pendingCases      sponsor's cases not yet completed
//	referrals         number of top-ups recorded for the sponsor
//	newClients        sponsor's cases created inside the window
//	revenue           top-up amounts paid inside the window
//	topCampaign       name of the sponsor with the most replies overall
func BuildMarketingStats(data models.AppData, start, end string) []models.MarketingStats {
	topCampaign := models.Unspecified
	best := -1
	for _, s := range data.Sponsors {
		if s.Replies > best {
			best = s.Replies
			topCampaign = s.Name
		}
	}

	rows := make([]models.MarketingStats, 0, len(data.Sponsors))
	for _, s := range data.Sponsors {
		row := models.MarketingStats{
			SponsorID:         s.ID,
			SponsorName:       s.Name,
			StartDate:         start,
			EndDate:           end,
			TotalClients:      s.PackageSize,
			RepliedClients:    s.Replies,
			SubscribedClients: s.Used,
			TopCampaign:       topCampaign,
		}

		for _, cs := range data.Cases {
			if cs.SponsorID == nil || *cs.SponsorID != s.ID {
				continue
			}
			if cs.Status != string(models.CaseCompleted) {
				row.PendingCases++
			}
			if inWindow(cs.CreatedAt, start, end) {
				row.NewClients++
			}
		}

		for _, r := range data.Reorders {
			if r.SponsorID != s.ID {
				continue
			}
			row.Referrals++
			if inWindow(r.At, start, end) {
				row.Revenue += r.Amount
			}
		}

		if row.TotalClients > 0 {
			row.ConversionRate = float64(row.RepliedClients) / float64(row.TotalClients) * 100
		}

		rows = append(rows, row)
	}
	return rows
}

// inWindow compares ISO dates lexically, which matches chronological order.
// Empty bounds are open.
func inWindow(date, start, end string) bool {
	if date == "" {
		return false
	}
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
