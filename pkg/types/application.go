package types

import "time"

type ApplicationKind string

const (
	ApplicationKindJob            ApplicationKind = "job"
	ApplicationKindAmbassador     ApplicationKind = "ambassador"
	ApplicationKindProposal       ApplicationKind = "proposal"
	ApplicationKindContentCreator ApplicationKind = "content_creator"
	ApplicationKindVolunteer      ApplicationKind = "volunteer"
)

var ApplicationKinds = []ApplicationKind{
	ApplicationKindJob,
	ApplicationKindAmbassador,
	ApplicationKindProposal,
	ApplicationKindContentCreator,
	ApplicationKindVolunteer,
}

func (k ApplicationKind) IsValid() bool {
	for _, kind := range ApplicationKinds {
		if k == kind {
			return true
		}
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"

	// Volunteer-only states. Volunteers are "approved" rather than
	// "accepted" and then move through an engagement lifecycle.
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusActive    ApplicationStatus = "active"
	ApplicationStatusCompleted ApplicationStatus = "completed"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// ApplicationReview is shared by every application kind.
type ApplicationReview struct {
	Status     ApplicationStatus `db:"status" json:"status"`
	ReviewedBy *string           `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time        `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`
}

// ApplicationRecord is the kind-independent view of a stored application.
type ApplicationRecord struct {
	ID           string          `db:"id" json:"id"`
	Kind         ApplicationKind `db:"-" json:"kind"`
	InitiativeID string          `db:"initiative_id" json:"initiativeId"`
	Name         string          `db:"name" json:"name"`
	Email        string          `db:"email" json:"email"`

	ApplicationReview
}

type JobApplication struct {
	ID           string  `db:"id" json:"id"`
	InitiativeID string  `db:"initiative_id" json:"initiativeId" form:"-"`
	JobID        *string `db:"job_id" json:"jobId,omitempty" form:"job_id"`
	FullName     string  `db:"full_name" json:"fullName" form:"full_name"`
	Email        string  `db:"email" json:"email" form:"email"`
	Phone        *string `db:"phone" json:"phone,omitempty" form:"phone"`
	Motivation   string  `db:"motivation" json:"motivation" form:"motivation"`

	ApplicationReview `form:"-"`
}

type AmbassadorApplication struct {
	ID           string `db:"id" json:"id"`
	InitiativeID string `db:"initiative_id" json:"initiativeId" form:"-"`
	FullName     string `db:"full_name" json:"fullName" form:"full_name"`
	Email        string `db:"email" json:"email" form:"email"`
	Reach        string `db:"reach" json:"reach" form:"reach"`
	Motivation   string `db:"motivation" json:"motivation" form:"motivation"`

	InitiativeRemovedAt *time.Time `db:"initiative_removed_at" json:"initiativeRemovedAt,omitempty" form:"-"`

	ApplicationReview `form:"-"`
}

type Proposal struct {
	ID           string  `db:"id" json:"id"`
	InitiativeID string  `db:"initiative_id" json:"initiativeId" form:"-"`
	Name         string  `db:"name" json:"name" form:"name"`
	Email        string  `db:"email" json:"email" form:"email"`
	Subject      string  `db:"subject" json:"subject" form:"subject"`
	Details      string  `db:"details" json:"details" form:"details"`
	Links        *string `db:"links" json:"links,omitempty" form:"links"`

	InitiativeRemovedAt *time.Time `db:"initiative_removed_at" json:"initiativeRemovedAt,omitempty" form:"-"`

	ApplicationReview `form:"-"`
}

type ContentCreatorApplication struct {
	ID           string `db:"id" json:"id"`
	InitiativeID string `db:"initiative_id" json:"initiativeId" form:"-"`
	FullName     string `db:"full_name" json:"fullName" form:"full_name"`
	Email        string `db:"email" json:"email" form:"email"`
	ContentType  string `db:"content_type" json:"contentType" form:"content_type"`
	Portfolio    string `db:"portfolio" json:"portfolio" form:"portfolio"`
	Motivation   string `db:"motivation" json:"motivation" form:"motivation"`

	InitiativeRemovedAt *time.Time `db:"initiative_removed_at" json:"initiativeRemovedAt,omitempty" form:"-"`

	ApplicationReview `form:"-"`
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExperienced  ExperienceLevel = "experienced"
	ExperienceExpert       ExperienceLevel = "expert"
)

func (l ExperienceLevel) IsValid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert:
		return true
	}
	return false
}

type VolunteerApplication struct {
	ID           string `db:"id" json:"id"`
	InitiativeID string `db:"initiative_id" json:"initiativeId" form:"-"`
	FullName     string `db:"full_name" json:"fullName" form:"full_name"`
	Email        string `db:"email" json:"email" form:"email"`

	Phone                  *string         `db:"phone" json:"phone,omitempty" form:"phone"`
	Location               *string         `db:"location" json:"location,omitempty" form:"location"`
	Skills                 []string        `db:"skills" json:"skills" form:"skills"`
	OtherSkills            *string         `db:"other_skills" json:"otherSkills,omitempty" form:"other_skills"`
	ExperienceLevel        ExperienceLevel `db:"experience_level" json:"experienceLevel" form:"experience_level"`
	AvailabilityDays       []string        `db:"availability_days" json:"availabilityDays" form:"availability_days"`
	AvailabilityHours      string          `db:"availability_hours" json:"availabilityHours" form:"availability_hours"`
	CommitmentDuration     string          `db:"commitment_duration" json:"commitmentDuration" form:"commitment_duration"`
	PreferredRoles         []string        `db:"preferred_roles" json:"preferredRoles,omitempty" form:"preferred_roles"`
	Languages              []string        `db:"languages" json:"languages,omitempty" form:"languages"`
	HasTransport           bool            `db:"has_transport" json:"hasTransport" form:"has_transport"`
	EmergencyContactName   string          `db:"emergency_contact_name" json:"emergencyContactName" form:"emergency_contact_name"`
	EmergencyContactPhone  string          `db:"emergency_contact_phone" json:"emergencyContactPhone" form:"emergency_contact_phone"`
	Motivation             *string         `db:"motivation" json:"motivation,omitempty" form:"motivation"`
	PreviousVolunteering   *string         `db:"previous_volunteering" json:"previousVolunteering,omitempty" form:"previous_volunteering"`
	BackgroundCheckConsent bool            `db:"background_check_consent" json:"backgroundCheckConsent" form:"background_check_consent"`

	ApplicationReview `form:"-"`
}
