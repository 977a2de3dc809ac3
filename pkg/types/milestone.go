package types

import "time"

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusInProgress MilestoneStatus = "in_progress"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusCompleted:
		return true
	}
	return false
}

type Milestone struct {
	ID           string          `db:"id" json:"id"`
	InitiativeID string          `db:"initiative_id" json:"initiativeId"`
	Title        string          `db:"title" json:"title"`
	TargetDate   string          `db:"target_date" json:"targetDate"`
	Status       MilestoneStatus `db:"status" json:"status"`
	Description  *string         `db:"description" json:"description,omitempty"`
	Position     int             `db:"position" json:"position"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

type MilestoneDraft struct {
	Title       string          `json:"title"`
	TargetDate  string          `json:"date"`
	Status      MilestoneStatus `json:"status"`
	Description string          `json:"description,omitempty"`
}
