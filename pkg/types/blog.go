package types

import "time"

type BlogPost struct {
	ID           string    `db:"id" json:"id"`
	InitiativeID *string   `db:"initiative_id" json:"initiativeId,omitempty"`
	Title        string    `db:"title" json:"title"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
