package dataservice

import (
	"time"

	"github.com/smartlaw/crm-backend/pkg/models"
)

// InitialData builds the starter dataset used when no persisted state
// exists yet. The shape is deterministic (ids and dates vary): three
// sponsors with plausible consumption, four lawyers with mixed statuses and
// plans, five cases cross-referencing valid ids (exactly one of them with
// no sponsor and no lawyer), and two top-ups against real sponsors.
func InitialData() models.AppData {
	now := time.Now()
	today := now.Format("2006-01-02")
	lastMonth := now.AddDate(0, -1, 0).Format("2006-01-02")

	sponsors := []models.Sponsor{
		{
			ID:               NewID(),
			Name:             "Facebook - June campaign",
			PackageSize:      50,
			Used:             32,
			Replies:          120,
			LastReply:        today,
			Notes:            "Primary campaign for legal consultations",
			SubscriptionDate: lastMonth,
		},
		{
			ID:               NewID(),
			Name:             "Facebook - July campaign",
			PackageSize:      40,
			Used:             10,
			Replies:          55,
			LastReply:        today,
			Notes:            "Testing audience segmentation",
			SubscriptionDate: today,
		},
		{
			ID:               NewID(),
			Name:             "Facebook - August campaign",
			PackageSize:      30,
			Used:             25,
			Replies:          89,
			LastReply:        today,
			Notes:            "Focused on criminal cases",
			SubscriptionDate: today,
		},
	}

	lawyers := []models.Lawyer{
		{
			ID:                  NewID(),
			Name:                "Ahmed Mohamed El-Sayed",
			Phone:               "01000000000",
			Specialty:           "criminal",
			Status:              models.LawyerActive,
			Notes:               "15 years of criminal litigation",
			JoinDate:            lastMonth,
			MaxCases:            20,
			CurrentCases:        15,
			IsSubscribed:        true,
			SubscriptionEndDate: now.AddDate(0, 4, 0).Format("2006-01-02"),
			SubscriptionType:    models.SubYearly,
		},
		{
			ID:                  NewID(),
			Name:                "Menna Mohamed Ali",
			Phone:               "01111111111",
			Specialty:           "civil",
			Status:              models.LawyerActive,
			Notes:               "Family and inheritance disputes",
			JoinDate:            lastMonth,
			MaxCases:            15,
			CurrentCases:        8,
			IsSubscribed:        true,
			SubscriptionEndDate: now.AddDate(0, 3, 0).Format("2006-01-02"),
			SubscriptionType:    models.SubMonthly,
		},
		{
			ID:               NewID(),
			Name:             "Khaled Ahmed Ibrahim",
			Phone:            "01222222222",
			Specialty:        "commercial",
			Status:           models.LawyerActive,
			Notes:            "Corporate and commercial law",
			JoinDate:         today,
			MaxCases:         10,
			CurrentCases:     3,
			SubscriptionType: models.SubFree,
		},
		{
			ID:               NewID(),
			Name:             "Fatma Hassan Mahmoud",
			Phone:            "01333333333",
			Specialty:        "labor",
			Status:           models.LawyerSuspended,
			Notes:            "On temporary leave",
			JoinDate:         lastMonth,
			MaxCases:         12,
			SubscriptionType: models.SubFree,
		},
	}

	cases := []models.Case{
		{
			ID:          NewID(),
			Title:       "Embezzlement misdemeanor 1985/2024",
			SponsorID:   &sponsors[0].ID,
			LawyerID:    &lawyers[0].ID,
			Type:        "misdemeanor",
			Status:      string(models.CaseInProgress),
			IsFree:      true,
			CreatedAt:   today,
			Description: "Company funds embezzlement case",
		},
		{
			ID:          NewID(),
			Title:       "Family - alimony 123/2024",
			SponsorID:   &sponsors[1].ID,
			LawyerID:    &lawyers[1].ID,
			Type:        "family",
			Status:      string(models.CaseNew),
			IsFree:      false,
			CreatedAt:   today,
			Description: "Spousal and child support claim",
		},
		{
			ID:          NewID(),
			Title:       "Commercial - partnership dispute 456/2024",
			SponsorID:   &sponsors[2].ID,
			LawyerID:    &lawyers[2].ID,
			Type:        "commercial",
			Status:      string(models.CaseCompleted),
			IsFree:      false,
			CreatedAt:   lastMonth,
			Description: "Dispute between partners of a trading company",
		},
		{
			// Deliberately unassigned so the unspecified display path is
			// always exercised.
			ID:          NewID(),
			Title:       "Labor - wrongful termination 789/2024",
			SponsorID:   nil,
			LawyerID:    nil,
			Type:        "labor",
			Status:      string(models.CaseNew),
			IsFree:      true,
			CreatedAt:   today,
			Description: "Wrongful termination claim",
		},
		{
			ID:          NewID(),
			Title:       "Civil - damages 321/2024",
			SponsorID:   &sponsors[0].ID,
			LawyerID:    &lawyers[1].ID,
			Type:        "civil",
			Status:      string(models.CaseInProgress),
			IsFree:      false,
			CreatedAt:   lastMonth,
			Description: "Compensation claim after a car accident",
		},
	}

	reorders := []models.Reorder{
		{
			ID:            NewID(),
			SponsorID:     sponsors[0].ID,
			Delta:         20,
			Note:          "Monthly package renewal",
			At:            lastMonth,
			Amount:        5000,
			InvoiceNumber: "INV-001",
		},
		{
			ID:            NewID(),
			SponsorID:     sponsors[1].ID,
			Delta:         15,
			Note:          "Raised the allowed case count",
			At:            today,
			Amount:        3000,
			InvoiceNumber: "INV-002",
		},
	}

	return models.AppData{
		Sponsors: sponsors,
		Lawyers:  lawyers,
		Cases:    cases,
		Reorders: reorders,
		Tasks:    []models.Task{},
	}
}
