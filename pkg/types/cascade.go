package types

type StepOutcome string

const (
	StepSucceeded StepOutcome = "succeeded"
	StepFailed    StepOutcome = "failed"
	StepSkipped   StepOutcome = "skipped"
)

type CascadeStep struct {
	Name     string      `json:"name"`
	Outcome  StepOutcome `json:"outcome"`
	Affected int64       `json:"affected"`
	Error    string      `json:"error,omitempty"`
}

// CascadeResult records what each step of an initiative removal did.
type CascadeResult struct {
	InitiativeID string         `json:"initiativeId"`
	Deleted      bool           `json:"deleted"`
	Steps        []*CascadeStep `json:"steps"`
}

func (r *CascadeResult) Step(name string) *CascadeStep {
	for _, s := range r.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *CascadeResult) Failed() []*CascadeStep {
	out := make([]*CascadeStep, 0)
	for _, s := range r.Steps {
		if s.Outcome == StepFailed {
			out = append(out, s)
		}
	}
	return out
}
