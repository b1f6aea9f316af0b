package models

/* =============================== Enums ================================== */

// LawyerStatus defines whether a lawyer currently takes cases.
type LawyerStatus string

const (
	LawyerActive    LawyerStatus = "active"
	LawyerSuspended LawyerStatus = "suspended"
)

// SubscriptionType defines a lawyer's billing plan.
type SubscriptionType string

const (
	SubMonthly SubscriptionType = "monthly"
	SubYearly  SubscriptionType = "yearly"
	SubFree    SubscriptionType = "free"
)

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CaseNew        CaseStatus = "new"
	CaseInProgress CaseStatus = "in-progress"
	CaseCompleted  CaseStatus = "completed"
)

// Unspecified is the display sentinel for nil or dangling sponsor/lawyer
// references. Dangling ids are tolerated, never treated as errors.
const Unspecified = "unspecified"

/* =============================== Entities =============================== */

// Sponsor is a marketing package purchased from an advertising channel.
// Used may exceed PackageSize; that is a display-level warning signal,
// not an enforced invariant.
type Sponsor struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PackageSize      int    `json:"packageSize"`
	Used             int    `json:"used"`
	Replies          int    `json:"replies"`
	LastReply        string `json:"lastReply"`
	Notes            string `json:"notes"`
	SubscriptionDate string `json:"subscriptionDate,omitempty"`
}

// Remaining reports the unconsumed capacity, floored at zero for display.
func (s Sponsor) Remaining() int {
	if r := s.PackageSize - s.Used; r > 0 {
		return r
	}
	return 0
}

// Lawyer is a case handler. CurrentCases is advisory and may drift from the
// actual number of assigned cases.
type Lawyer struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Phone               string           `json:"phone"`
	Specialty           string           `json:"specialty"`
	Status              LawyerStatus     `json:"status"`
	Notes               string           `json:"notes"`
	JoinDate            string           `json:"joinDate,omitempty"`
	MaxCases            int              `json:"maxCases,omitempty"`
	CurrentCases        int              `json:"currentCases,omitempty"`
	IsSubscribed        bool             `json:"isSubscribed,omitempty"`
	SubscriptionEndDate string           `json:"subscriptionEndDate,omitempty"`
	SubscriptionType    SubscriptionType `json:"subscriptionType,omitempty"`
}

// Case is a legal matter. SponsorID and LawyerID are nullable references;
// if the referenced entity was deleted the id simply dangles and resolves
// to Unspecified at read time.
type Case struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SponsorID   *string `json:"sponsorId"`
	LawyerID    *string `json:"lawyerId"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	IsFree      bool    `json:"isFree"`
	CreatedAt   string  `json:"createdAt"`
	Description string  `json:"description,omitempty"`
}

// Reorder records a package top-up. Entries are append-only; nothing in the
// system mutates or deletes one.
type Reorder struct {
	ID            string  `json:"id"`
	SponsorID     string  `json:"sponsorId"`
	Delta         int     `json:"delta"`
	Note          string  `json:"note"`
	At            string  `json:"at"`
	Amount        float64 `json:"amount,omitempty"`
	InvoiceNumber string  `json:"invoiceNumber,omitempty"`
}

// Task is a generated review reminder. Tasks are rebuilt on demand and are
// not part of the durable aggregate in practice.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

/* ============================== Aggregate =============================== */

// AppData is the aggregate root: the whole CRM dataset, persisted as one
// blob. Insertion order of the slices is preserved for display.
type AppData struct {
	Sponsors []Sponsor `json:"sponsors"`
	Lawyers  []Lawyer  `json:"lawyers"`
	Cases    []Case    `json:"cases"`
	Reorders []Reorder `json:"reorders"`
	Tasks    []Task    `json:"tasks"`
}

// Normalize replaces nil slices with empty ones so consumers and JSON
// serialization never see null collections.
func (d *AppData) Normalize() {
	if d.Sponsors == nil {
		d.Sponsors = []Sponsor{}
	}
	if d.Lawyers == nil {
		d.Lawyers = []Lawyer{}
	}
	if d.Cases == nil {
		d.Cases = []Case{}
	}
	if d.Reorders == nil {
		d.Reorders = []Reorder{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}

/* ============================ Derived views ============================= */

// Stats is the KPI view recomputed from AppData after every mutation.
// Never persisted.
type Stats struct {
	TotalCases     int `json:"totalCases"`
	FreeCases      int `json:"freeCases"`
	ActiveLawyers  int `json:"activeLawyers"`
	TotalReplies   int `json:"totalReplies"`
	ActiveSponsors int `json:"activeSponsors"`
	LowPackages    int `json:"lowPackages"`
}

// SponsorUsage is one report row describing how much of a sponsor's
// package has been consumed.
type SponsorUsage struct {
	SponsorID string `json:"sponsorId"`
	Name      string `json:"name"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
}

// CaseStatusCount is one report row per lifecycle state.
type CaseStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// LawyerCaseLoad is one report row per lawyer with the free/paid split of
// their assigned cases.
type LawyerCaseLoad struct {
	LawyerID  string `json:"lawyerId"`
	Name      string `json:"name"`
	Cases     int    `json:"cases"`
	FreeCases int    `json:"freeCases"`
	PaidCases int    `json:"paidCases"`
}

// Report bundles the dashboard report views. Like Stats it is recomputed
// on request and never persisted.
type Report struct {
	SponsorUsage []SponsorUsage    `json:"sponsorUsage"`
	CaseStatus   []CaseStatusCount `json:"caseStatus"`
	LawyerCases  []LawyerCaseLoad  `json:"lawyerCases"`
	TopSponsors  []SponsorUsage    `json:"topSponsors"`
	LowPackages  []SponsorUsage    `json:"lowPackages"`
	RecentCases  []Case            `json:"recentCases"`
}

// MarketingStats is one derived analytics row per sponsor.
type MarketingStats struct {
	SponsorID         string  `json:"sponsorId"`
	SponsorName       string  `json:"sponsorName"`
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	TotalClients      int     `json:"totalClients"`
	SubscribedClients int     `json:"subscribedClients"`
	PendingCases      int     `json:"pendingCases"`
	Referrals         int     `json:"referrals"`
	RepliedClients    int     `json:"repliedClients"`
	NewClients        int     `json:"newClients"`
	ConversionRate    float64 `json:"conversionRate"`
	Revenue           float64 `json:"revenue"`
	TopCampaign       string  `json:"topCampaign"`
}
