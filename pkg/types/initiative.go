package types

import (
	"time"
)

type InitiativeStatus string

const (
	InitiativeStatusDraft     InitiativeStatus = "draft"
	InitiativeStatusPublished InitiativeStatus = "published"
	InitiativeStatusActive    InitiativeStatus = "active"
	InitiativeStatusCompleted InitiativeStatus = "completed"
	InitiativeStatusStalled   InitiativeStatus = "stalled"
)

// PublicInitiativeStatuses are the statuses visible on the public listing and
// eligible to receive applications.
var PublicInitiativeStatuses = []InitiativeStatus{
	InitiativeStatusPublished,
	InitiativeStatusActive,
	InitiativeStatusCompleted,
}

func (s InitiativeStatus) IsValid() bool {
	switch s {
	case InitiativeStatusDraft, InitiativeStatusPublished, InitiativeStatusActive, InitiativeStatusCompleted, InitiativeStatusStalled:
		return true
	}
	return false
}

func (s InitiativeStatus) IsPublic() bool {
	for _, p := range PublicInitiativeStatuses {
		if s == p {
			return true
		}
	}
	return false
}

type InitiativeCategory string

const (
	CategoryAgriculture    InitiativeCategory = "agriculture"
	CategoryWater          InitiativeCategory = "water"
	CategoryHealth         InitiativeCategory = "health"
	CategoryEducation      InitiativeCategory = "education"
	CategoryInfrastructure InitiativeCategory = "infrastructure"
	CategoryEconomic       InitiativeCategory = "economic"
	CategoryEnvironment    InitiativeCategory = "environment"
	CategorySocial         InitiativeCategory = "social"
	CategoryOther          InitiativeCategory = "other"
)

func (c InitiativeCategory) IsValid() bool {
	switch c {
	case CategoryAgriculture, CategoryWater, CategoryHealth, CategoryEducation, CategoryInfrastructure,
		CategoryEconomic, CategoryEnvironment, CategorySocial, CategoryOther:
		return true
	}
	return false
}

type Initiative struct {
	ID            string `db:"id" json:"id"`
	ChangemakerID string `db:"changemaker_id" json:"changemakerId"`

	InitiativeLocation

	Title                 string             `db:"title" json:"title"`
	ShortDescription      string             `db:"short_description" json:"shortDescription"`
	Description           *string            `db:"description" json:"description,omitempty"`
	Category              InitiativeCategory `db:"category" json:"category"`
	TargetAmount          float64            `db:"target_amount" json:"targetAmount"`
	RaisedAmount          float64            `db:"raised_amount" json:"raisedAmount"`
	Duration              *string            `db:"duration" json:"duration,omitempty"`
	ExpectedCompletion    *time.Time         `db:"expected_completion" json:"expectedCompletion,omitempty"`
	ImageURLs             []string           `db:"image_urls" json:"imageUrls"`
	PaymentDetails        *PaymentDetails    `db:"payment_details" json:"paymentDetails,omitempty"`
	Status                InitiativeStatus   `db:"status" json:"status"`
	AcceptProposals       *bool              `db:"accept_proposals" json:"acceptProposals,omitempty"`
	AcceptContentCreators *bool              `db:"accept_content_creators" json:"acceptContentCreators,omitempty"`
	AcceptAmbassadors     *bool              `db:"accept_ambassadors" json:"acceptAmbassadors,omitempty"`
	CreatedAt             time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updatedAt"`

	Milestones []*Milestone `db:"-" json:"milestones"`
}

type InitiativeLocation struct {
	County       string       `db:"county" json:"county"`
	Constituency string       `db:"constituency" json:"constituency"`
	Area         string       `db:"area" json:"area"`
	Latitude     float64      `db:"latitude" json:"latitude"`
	Longitude    float64      `db:"longitude" json:"longitude"`
	Geofence     []Coordinate `db:"geofence" json:"geofence,omitempty"`
}

func (l InitiativeLocation) Coordinate() Coordinate {
	return Coordinate{Lat: l.Latitude, Lng: l.Longitude}
}

type PaymentMethod string

const (
	PaymentMethodMpesaPaybill PaymentMethod = "mpesa_paybill"
	PaymentMethodMpesaTill    PaymentMethod = "mpesa_till"
	PaymentMethodMpesaPhone   PaymentMethod = "mpesa_phone"
	PaymentMethodBank         PaymentMethod = "bank"
)

type PaymentDetails struct {
	Method        PaymentMethod `json:"method"`
	PaybillNumber string        `json:"paybillNumber,omitempty"`
	AccountNumber string        `json:"accountNumber,omitempty"`
	TillNumber    string        `json:"tillNumber,omitempty"`
	PhoneNumber   string        `json:"phoneNumber,omitempty"`
	BankName      string        `json:"bankName,omitempty"`
	BankAccount   string        `json:"bankAccount,omitempty"`
}

// InitiativeDraft is what a publisher submits to create an initiative.
type InitiativeDraft struct {
	Title              string                  `json:"title"`
	ShortDescription   string                  `json:"shortDescription"`
	Description        string                  `json:"description,omitempty"`
	Category           InitiativeCategory      `json:"category"`
	TargetAmount       float64                 `json:"targetAmount"`
	RaisedAmount       float64                 `json:"raisedAmount"`
	County             string                  `json:"county,omitempty"`
	Constituency       string                  `json:"constituency,omitempty"`
	Area               string                  `json:"area,omitempty"`
	Coordinate         *Coordinate             `json:"coordinate,omitempty"`
	Geofence           []Coordinate            `json:"geofence,omitempty"`
	Duration           string                  `json:"duration,omitempty"`
	ExpectedCompletion *time.Time              `json:"expectedCompletion,omitempty"`
	PaymentDetails     *PaymentDetails         `json:"paymentDetails,omitempty"`
	Status             InitiativeStatus        `json:"status,omitempty"`
	Preferences        *OpportunityPreferences `json:"preferences,omitempty"`
	Milestones         []MilestoneDraft        `json:"milestones"`
	Jobs               []JobDraft              `json:"jobs,omitempty"`

	// PendingImages never leave the process; they are excluded from autosave.
	PendingImages []ImageUpload `json:"-"`
}

type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// CreateResult reports what was durably stored when creating an initiative.
type CreateResult struct {
	Initiative     *Initiative `json:"initiative"`
	MilestoneError string      `json:"milestoneError,omitempty"`
	JobError       string      `json:"jobError,omitempty"`
	FailedImages   []string    `json:"failedImages,omitempty"`
}

// Degraded is true when the initiative row was stored but some dependent
// records or images were not.
func (r *CreateResult) Degraded() bool {
	return r.MilestoneError != "" || r.JobError != "" || len(r.FailedImages) > 0
}

type DisplayStatus string

const (
	DisplayStatusActive    DisplayStatus = "active"
	DisplayStatusCompleted DisplayStatus = "completed"
	DisplayStatusPaused    DisplayStatus = "paused"
)

type InitiativeSummary struct {
	Initiative        *Initiative      `json:"initiative"`
	Status            InitiativeStatus `json:"status"`
	DisplayStatus     DisplayStatus    `json:"displayStatus"`
	FundingProgress   float64          `json:"fundingProgress"`
	MilestoneProgress float64          `json:"milestoneProgress"`
}

// SavedDraft is an autosaved, in-progress initiative form.
type SavedDraft struct {
	SessionKey string          `db:"session_key" json:"-"`
	Snapshot   InitiativeDraft `db:"snapshot" json:"snapshot"`
	SavedAt    time.Time       `db:"saved_at" json:"savedAt"`
}
