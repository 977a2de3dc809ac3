package types

import "time"

type Job struct {
	ID           string    `db:"id" json:"id"`
	InitiativeID string    `db:"initiative_id" json:"initiativeId"`
	Title        string    `db:"title" json:"title"`
	Type         *string   `db:"type" json:"type,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type JobDraft struct {
	Title       string `json:"title" form:"title"`
	Type        string `json:"type,omitempty" form:"type"`
	Description string `json:"description,omitempty" form:"description"`
}

type OpportunityPreferences struct {
	AcceptProposals       bool `json:"acceptProposals"`
	AcceptContentCreators bool `json:"acceptContentCreators"`
	AcceptAmbassadors     bool `json:"acceptAmbassadors"`
}
