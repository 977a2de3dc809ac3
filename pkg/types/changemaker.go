package types

import "time"

// Changemaker is the publishing identity initiatives are attached to. There is
// at most one per account.
type Changemaker struct {
	ID           string    `db:"id" json:"id"`
	AccountID    string    `db:"account_id" json:"accountId"`
	DisplayName  string    `db:"display_name" json:"displayName"`
	Organization *string   `db:"organization" json:"organization,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile holds the facts about an account that the identity resolver can
// derive a changemaker name from.
type Profile struct {
	AccountID            string `json:"accountId"`
	Email                string `json:"email"`
	OrganizationName     string `json:"organizationName,omitempty"`
	GovernmentEntityName string `json:"governmentEntityName,omitempty"`
	PoliticalFigureName  string `json:"politicalFigureName,omitempty"`
	ChangemakerName      string `json:"changemakerName,omitempty"`
}
