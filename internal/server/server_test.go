package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/store"
)

/* ============================================================================
   Helpers
   ============================================================================ */

func strPtr(s string) *string { return &s }

// newTestApp boots the full app over an in-memory SQLite store seeded with
// the given aggregate.
func newTestApp(t *testing.T, seed models.AppData) (*fiber.App, *state.Manager) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	st := store.New(db, zerolog.Nop())
	require.NoError(t, st.Migrate())

	mgr := state.Load(context.Background(), st, "crm", seed)
	return New(mgr), mgr
}

func seedData() models.AppData {
	return models.AppData{
		Sponsors: []models.Sponsor{
			{ID: "s1", Name: "June campaign", PackageSize: 20, Used: 5, Replies: 40},
			{ID: "s2", Name: "July campaign", PackageSize: 10, Used: 3, Replies: 10},
		},
		Lawyers: []models.Lawyer{
			{ID: "l1", Name: "Ahmed", Status: models.LawyerActive},
		},
		Cases: []models.Case{
			{ID: "c1", Title: "Assigned", SponsorID: strPtr("s1"), LawyerID: strPtr("l1"), CreatedAt: "2024-06-01"},
			{ID: "c2", Title: "Unassigned", SponsorID: nil, LawyerID: nil, CreatedAt: "2024-06-02"},
		},
		Reorders: []models.Reorder{},
		Tasks:    []models.Task{},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func sponsorUsed(t *testing.T, mgr *state.Manager, id string) int {
	t.Helper()
	for _, s := range mgr.Snapshot().Sponsors {
		if s.ID == id {
			return s.Used
		}
	}
	t.Fatalf("sponsor %s not found", id)
	return 0
}

/* ============================================================================
   Cases + sponsor usage linkage
   ============================================================================ */

func TestCreateCaseConsumesSponsorPackage(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, body := doJSON(t, app, "POST", "/api/cases", map[string]any{
		"title":     "New matter",
		"sponsorId": "s1",
		"status":    "new",
	})
	require.Equal(t, fiber.StatusCreated, code)

	assert.Equal(t, 6, sponsorUsed(t, mgr, "s1"))

	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["totalCases"], "mutation response carries refreshed stats")
}

func TestReassignCaseMovesUsage(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "PUT", "/api/cases/c1", map[string]any{
		"title":     "Assigned",
		"sponsorId": "s2",
	})
	require.Equal(t, fiber.StatusOK, code)

	assert.Equal(t, 4, sponsorUsed(t, mgr, "s1"))
	assert.Equal(t, 4, sponsorUsed(t, mgr, "s2"))
}

func TestUpdateCaseSameSponsorKeepsUsage(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "PUT", "/api/cases/c1", map[string]any{
		"title":     "Renamed",
		"sponsorId": "s1",
	})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 5, sponsorUsed(t, mgr, "s1"))
}

func TestDeleteCaseReleasesUsage(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "DELETE", "/api/cases/c1", nil)
	require.Equal(t, fiber.StatusOK, code)

	assert.Equal(t, 4, sponsorUsed(t, mgr, "s1"))
	assert.Len(t, mgr.Snapshot().Cases, 1)
}

func TestCaseNotFound(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "PUT", "/api/cases/nope", map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	code, _ = doJSON(t, app, "DELETE", "/api/cases/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestCaseValidation(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "POST", "/api/cases", map[string]any{"title": ""})
	require.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body["message"])

	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "title")
}

func TestListCasesResolvesDanglingReferences(t *testing.T) {
	data := seedData()
	data.Cases = append(data.Cases, models.Case{
		ID: "c3", Title: "Orphan", SponsorID: strPtr("deleted-sponsor"), LawyerID: strPtr("deleted-lawyer"),
	})
	app, _ := newTestApp(t, data)

	code, body := doJSON(t, app, "GET", "/api/cases", nil)
	require.Equal(t, fiber.StatusOK, code)

	items := body["items"].([]any)
	require.Len(t, items, 3)

	byTitle := map[string]map[string]any{}
	for _, it := range items {
		row := it.(map[string]any)
		byTitle[row["title"].(string)] = row
	}

	assert.Equal(t, "June campaign", byTitle["Assigned"]["sponsorName"])
	assert.Equal(t, models.Unspecified, byTitle["Unassigned"]["sponsorName"])
	assert.Equal(t, models.Unspecified, byTitle["Unassigned"]["lawyerName"])
	assert.Equal(t, models.Unspecified, byTitle["Orphan"]["sponsorName"])
	assert.Equal(t, models.Unspecified, byTitle["Orphan"]["lawyerName"])
}

/* ============================================================================
   Sponsors + reorders
   ============================================================================ */

func TestReorderGrowsPackageAndLogs(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, body := doJSON(t, app, "POST", "/api/sponsors/s1/reorder", map[string]any{
		"delta":         15,
		"note":          "Quarterly top-up",
		"amount":        3000,
		"invoiceNumber": "INV-042",
	})
	require.Equal(t, fiber.StatusCreated, code)

	sponsor := body["sponsor"].(map[string]any)
	assert.Equal(t, float64(35), sponsor["packageSize"])

	snap := mgr.Snapshot()
	require.Len(t, snap.Reorders, 1)
	assert.Equal(t, "s1", snap.Reorders[0].SponsorID)
	assert.Equal(t, 15, snap.Reorders[0].Delta)
	assert.Equal(t, "INV-042", snap.Reorders[0].InvoiceNumber)
}

func TestReorderUnknownSponsor(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "POST", "/api/sponsors/nope/reorder", map[string]any{"delta": 5})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestReorderRejectsNonPositiveDelta(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "POST", "/api/sponsors/s1/reorder", map[string]any{"delta": 0})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Empty(t, mgr.Snapshot().Reorders)
}

func TestSponsorListFlags(t *testing.T) {
	data := seedData()
	data.Sponsors = []models.Sponsor{
		{ID: "low", Name: "Low", PackageSize: 10, Used: 7},
		{ID: "out", Name: "Out", PackageSize: 10, Used: 10},
		{ID: "over", Name: "Over", PackageSize: 10, Used: 12},
		{ID: "ok", Name: "OK", PackageSize: 10, Used: 1},
	}
	app, _ := newTestApp(t, data)

	code, body := doJSON(t, app, "GET", "/api/sponsors", nil)
	require.Equal(t, fiber.StatusOK, code)

	rows := map[string]map[string]any{}
	for _, it := range body["items"].([]any) {
		row := it.(map[string]any)
		rows[row["id"].(string)] = row
	}

	assert.Equal(t, true, rows["low"]["low"])
	assert.Equal(t, true, rows["out"]["exhausted"])
	assert.Equal(t, float64(0), rows["over"]["remaining"], "overconsumed floors at zero")
	assert.Equal(t, true, rows["over"]["exhausted"])
	assert.Equal(t, false, rows["ok"]["low"])
}

func TestDeleteSponsorLeavesCasesDangling(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "DELETE", "/api/sponsors/s1", nil)
	require.Equal(t, fiber.StatusOK, code)

	snap := mgr.Snapshot()
	require.Len(t, snap.Cases, 2, "no cascade")
	assert.Equal(t, "s1", *snap.Cases[0].SponsorID, "dangling id kept")
}

/* ============================================================================
   Backup: export / import / reset
   ============================================================================ */

func TestExportDownloadsDateNamedFile(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	req := httptest.NewRequest("GET", "/api/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	wantName := fmt.Sprintf("smartlaw-crm-%s.json", time.Now().Format("2006-01-02"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), wantName)

	var exported models.AppData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exported))
	assert.Len(t, exported.Sponsors, 2)
}

func TestImportReplacesStateWholesale(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	payload := map[string]any{
		"sponsors": []any{},
		"lawyers":  []any{},
		"cases": []any{
			map[string]any{"id": "x1", "title": "Imported", "sponsorId": nil, "lawyerId": nil},
		},
		"reorders": []any{},
	}
	code, _ := doJSON(t, app, "POST", "/api/import", payload)
	require.Equal(t, fiber.StatusOK, code)

	snap := mgr.Snapshot()
	assert.Empty(t, snap.Sponsors, "import replaces, never merges")
	require.Len(t, snap.Cases, 1)
	assert.Equal(t, "Imported", snap.Cases[0].Title)
}

func TestImportRejectsBadPayloadAndKeepsState(t *testing.T) {
	app, mgr := newTestApp(t, seedData())
	before := mgr.Snapshot()

	for _, payload := range []string{"not json", "{}"} {
		req := httptest.NewRequest("POST", "/api/import", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}

	assert.Equal(t, before, mgr.Snapshot(), "failed import must not touch state")
}

func TestResetRequiresConfirmation(t *testing.T) {
	app, mgr := newTestApp(t, seedData())
	before := mgr.Snapshot()

	code, _ := doJSON(t, app, "POST", "/api/reset", map[string]any{"confirm": false})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, before, mgr.Snapshot())

	code, _ = doJSON(t, app, "POST", "/api/reset", map[string]any{"confirm": true})
	require.Equal(t, fiber.StatusOK, code)

	snap := mgr.Snapshot()
	assert.Len(t, snap.Sponsors, 3, "back to the seed dataset")
	assert.Len(t, snap.Cases, 5)
}

/* ============================================================================
   Analytics
   ============================================================================ */

func TestStatsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "GET", "/api/stats", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(2), body["totalCases"])
	assert.Equal(t, float64(1), body["activeLawyers"])
	assert.Equal(t, float64(50), body["totalReplies"])
}

func TestMarketingEndpointFiltersBySponsor(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "GET", "/api/analytics/marketing?sponsor_id=s1", nil)
	require.Equal(t, fiber.StatusOK, code)

	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].(map[string]any)["sponsorId"])
}

func TestMarketingEndpointRejectsBadDates(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, _ := doJSON(t, app, "GET", "/api/analytics/marketing?start=junk", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestTasksEndpoint(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "GET", "/api/analytics/tasks", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, body["items"].([]any), 4)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "GET", "/health", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

/* ============================================================================
   Lawyers
   ============================================================================ */

func TestLawyerCRUD(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	code, body := doJSON(t, app, "POST", "/api/lawyers", map[string]any{
		"name":             "Menna",
		"status":           "active",
		"specialty":        "civil",
		"subscriptionType": "monthly",
	})
	require.Equal(t, fiber.StatusCreated, code)
	id := body["lawyer"].(map[string]any)["id"].(string)

	code, _ = doJSON(t, app, "PUT", "/api/lawyers/"+id, map[string]any{
		"name":   "Menna Mohamed",
		"status": "suspended",
	})
	require.Equal(t, fiber.StatusOK, code)

	snap := mgr.Snapshot()
	require.Len(t, snap.Lawyers, 2)
	assert.Equal(t, models.LawyerSuspended, snap.Lawyers[1].Status)

	code, _ = doJSON(t, app, "DELETE", "/api/lawyers/"+id, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, mgr.Snapshot().Lawyers, 1)
}

func TestLawyerRejectsUnknownStatus(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "POST", "/api/lawyers", map[string]any{
		"name":   "Bad",
		"status": "retired",
	})
	require.Equal(t, fiber.StatusBadRequest, code)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "status")
}

/* ============================================================================
   Concurrent writes
   ============================================================================ */

func TestConcurrentCaseDeletesReleaseSponsorOnce(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	const workers = 8
	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("DELETE", "/api/cases/c1", nil)
			resp, err := app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	deleted := 0
	for code := range statuses {
		if code == fiber.StatusOK {
			deleted++
		} else {
			assert.Equal(t, fiber.StatusNotFound, code)
		}
	}
	assert.Equal(t, 1, deleted, "exactly one delete wins")
	assert.Equal(t, 4, sponsorUsed(t, mgr, "s1"), "the package unit is released exactly once")
	assert.Len(t, mgr.Snapshot().Cases, 1)
}

func TestConcurrentCaseReassignmentsKeepUsageConsistent(t *testing.T) {
	app, mgr := newTestApp(t, seedData())

	bodies := []string{
		`{"title":"Assigned","sponsorId":"s2","createdAt":"2024-06-01"}`,
		`{"title":"Assigned","sponsorId":null,"createdAt":"2024-06-01"}`,
	}
	var wg sync.WaitGroup
	for _, body := range bodies {
		wg.Add(1)
		go func(raw string) {
			defer wg.Done()
			req := httptest.NewRequest("PUT", "/api/cases/c1", strings.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err == nil {
				resp.Body.Close()
			}
		}(body)
	}
	wg.Wait()

	snap := mgr.Snapshot()
	var final *models.Case
	for i := range snap.Cases {
		if snap.Cases[i].ID == "c1" {
			final = &snap.Cases[i]
		}
	}
	require.NotNil(t, final)

	// Whichever write lands last, each reassignment charges the sponsor it
	// actually replaced, so the counters stay conserved.
	assert.Equal(t, 4, sponsorUsed(t, mgr, "s1"))
	wantS2 := 3
	if final.SponsorID != nil && *final.SponsorID == "s2" {
		wantS2 = 4
	}
	assert.Equal(t, wantS2, sponsorUsed(t, mgr, "s2"))
}

/* ============================================================================
   Reports
   ============================================================================ */

func TestReportsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, seedData())

	code, body := doJSON(t, app, "GET", "/api/analytics/reports", nil)
	require.Equal(t, fiber.StatusOK, code)

	usage := body["sponsorUsage"].([]any)
	require.Len(t, usage, 2)
	first := usage[0].(map[string]any)
	assert.Equal(t, "s1", first["sponsorId"])
	assert.EqualValues(t, 15, first["remaining"])

	loads := body["lawyerCases"].([]any)
	require.Len(t, loads, 1)
	assert.EqualValues(t, 1, loads[0].(map[string]any)["cases"])

	recent := body["recentCases"].([]any)
	require.Len(t, recent, 2)
	assert.Equal(t, "c2", recent[0].(map[string]any)["id"], "newest first")

	assert.Empty(t, body["lowPackages"], "both seed sponsors have plenty left")
}
