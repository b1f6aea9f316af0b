package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartlaw/crm-backend/pkg/models"
)

func strPtr(s string) *string { return &s }

func analyticsFixture() models.AppData {
	return models.AppData{
		Sponsors: []models.Sponsor{
			{ID: "s1", Name: "June campaign", PackageSize: 50, Used: 32, Replies: 120},
			{ID: "s2", Name: "July campaign", PackageSize: 40, Used: 10, Replies: 55},
		},
		Cases: []models.Case{
			{ID: "c1", SponsorID: strPtr("s1"), Status: string(models.CaseInProgress), CreatedAt: "2024-06-10"},
			{ID: "c2", SponsorID: strPtr("s1"), Status: string(models.CaseCompleted), CreatedAt: "2024-05-01"},
			{ID: "c3", SponsorID: strPtr("s2"), Status: string(models.CaseNew), CreatedAt: "2024-06-20"},
			{ID: "c4", SponsorID: nil, Status: string(models.CaseNew), CreatedAt: "2024-06-20"},
		},
		Reorders: []models.Reorder{
			{ID: "r1", SponsorID: "s1", Delta: 20, At: "2024-06-15", Amount: 5000},
			{ID: "r2", SponsorID: "s1", Delta: 10, At: "2024-01-01", Amount: 1000},
		},
	}
}

func TestBuildMarketingStatsDerivesFromRealData(t *testing.T) {
	rows := BuildMarketingStats(analyticsFixture(), "2024-06-01", "2024-06-30")
	require.Len(t, rows, 2)

	s1 := rows[0]
	assert.Equal(t, "s1", s1.SponsorID)
	assert.Equal(t, 50, s1.TotalClients)
	assert.Equal(t, 120, s1.RepliedClients)
	assert.Equal(t, 32, s1.SubscribedClients)
	assert.Equal(t, 1, s1.PendingCases, "completed cases are not pending")
	assert.Equal(t, 2, s1.Referrals, "all top-ups count as referrals")
	assert.Equal(t, 1, s1.NewClients, "only cases created inside the window")
	assert.InDelta(t, 240.0, s1.ConversionRate, 0.001)
	assert.InDelta(t, 5000.0, s1.Revenue, 0.001, "only top-ups inside the window")
	assert.Equal(t, "June campaign", s1.TopCampaign)

	s2 := rows[1]
	assert.Equal(t, 1, s2.PendingCases)
	assert.Equal(t, 0, s2.Referrals)
	assert.InDelta(t, 0.0, s2.Revenue, 0.001)
	assert.Equal(t, "June campaign", s2.TopCampaign, "top campaign is global")
}

func TestBuildMarketingStatsIsDeterministic(t *testing.T) {
	data := analyticsFixture()
	first := BuildMarketingStats(data, "2024-06-01", "2024-06-30")
	second := BuildMarketingStats(data, "2024-06-01", "2024-06-30")
	assert.Equal(t, first, second)
}

func TestBuildMarketingStatsZeroCapacity(t *testing.T) {
	data := models.AppData{Sponsors: []models.Sponsor{{ID: "s", Name: "Empty", Replies: 10}}}

	rows := BuildMarketingStats(data, "", "")
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.0, rows[0].ConversionRate, 0.001, "no division by zero")
}

func TestGenerateTasks(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tasks := GenerateTasks(now)
	require.Len(t, tasks, 4)

	assert.Equal(t, "2024-06-01", tasks[0].DueDate)
	assert.Equal(t, "2024-06-16", tasks[1].DueDate)
	assert.Equal(t, "2024-07-01", tasks[2].DueDate)
	assert.Equal(t, "2024-07-16", tasks[3].DueDate)
	for _, task := range tasks {
		assert.False(t, task.Completed)
		assert.NotEmpty(t, task.Description)
	}
}
