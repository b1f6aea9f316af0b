package analytics

import (
	"sort"

	"github.com/smartlaw/crm-backend/pkg/models"
)

const (
	topSponsorLimit = 5
	recentCaseLimit = 10
)

// BuildReport derives the dashboard report views from the aggregate:
// per-sponsor package usage, the case status distribution, each lawyer's
// case load with its free/paid split, the five most-consumed sponsors,
// the sponsors running low, and the ten most recent cases.
func BuildReport(data models.AppData) models.Report {
	usage := make([]models.SponsorUsage, 0, len(data.Sponsors))
	for _, s := range data.Sponsors {
		usage = append(usage, models.SponsorUsage{
			SponsorID: s.ID,
			Name:      s.Name,
			Used:      s.Used,
			Remaining: s.Remaining(),
			Total:     s.PackageSize,
		})
	}

	status := []models.CaseStatusCount{
		{Status: string(models.CaseNew)},
		{Status: string(models.CaseInProgress)},
		{Status: string(models.CaseCompleted)},
	}
	for _, cs := range data.Cases {
		for i := range status {
			if cs.Status == status[i].Status {
				status[i].Count++
			}
		}
	}

	loads := make([]models.LawyerCaseLoad, 0, len(data.Lawyers))
	for _, l := range data.Lawyers {
		row := models.LawyerCaseLoad{LawyerID: l.ID, Name: l.Name}
		for _, cs := range data.Cases {
			if cs.LawyerID == nil || *cs.LawyerID != l.ID {
				continue
			}
			row.Cases++
			if cs.IsFree {
				row.FreeCases++
			} else {
				row.PaidCases++
			}
		}
		loads = append(loads, row)
	}

	top := append([]models.SponsorUsage(nil), usage...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Used > top[j].Used })
	if len(top) > topSponsorLimit {
		top = top[:topSponsorLimit]
	}

	// Low means at most five units left. Exhausted and over-consumed
	// sponsors count too; renewal is overdue for them, not irrelevant.
	low := make([]models.SponsorUsage, 0)
	for _, u := range usage {
		if u.Total-u.Used <= 5 {
			low = append(low, u)
		}
	}

	recent := append([]models.Case(nil), data.Cases...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt > recent[j].CreatedAt })
	if len(recent) > recentCaseLimit {
		recent = recent[:recentCaseLimit]
	}

	return models.Report{
		SponsorUsage: usage,
		CaseStatus:   status,
		LawyerCases:  loads,
		TopSponsors:  top,
		LowPackages:  low,
		RecentCases:  recent,
	}
}
