package initiative

import (
	"strings"

	"changemakers/pkg/types"
)

// FundingProgress is raised over target as a percentage. It is 0 when the
// target is 0 and is not capped at 100.
func FundingProgress(initiative *types.Initiative) float64 {
	if initiative == nil || initiative.TargetAmount <= 0 {
		return 0
	}

	return initiative.RaisedAmount / initiative.TargetAmount * 100
}

func MilestoneProgress(milestones []*types.Milestone) float64 {
	if len(milestones) == 0 {
		return 0
	}

	completed := 0
	for _, m := range milestones {
		if m != nil && m.Status == types.MilestoneStatusCompleted {
			completed++
		}
	}

	return float64(completed) / float64(len(milestones)) * 100
}

func DisplayStatusFor(status types.InitiativeStatus) types.DisplayStatus {
	switch status {
	case types.InitiativeStatusCompleted:
		return types.DisplayStatusCompleted
	case types.InitiativeStatusStalled, types.InitiativeStatusDraft:
		return types.DisplayStatusPaused
	default:
		return types.DisplayStatusActive
	}
}

func Summarize(initiative *types.Initiative) types.InitiativeSummary {
	return types.InitiativeSummary{
		Initiative:        initiative,
		Status:            initiative.Status,
		DisplayStatus:     DisplayStatusFor(initiative.Status),
		FundingProgress:   FundingProgress(initiative),
		MilestoneProgress: MilestoneProgress(initiative.Milestones),
	}
}

// MatchesStatusFilter accepts either a raw lifecycle status or a display
// status as the filter. "active" and "completed" exist in both vocabularies
// and are matched against the display status.
func MatchesStatusFilter(summary types.InitiativeSummary, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))

	switch filter {
	case "", "all":
		return true
	case string(types.DisplayStatusActive), string(types.DisplayStatusCompleted), string(types.DisplayStatusPaused):
		return string(summary.DisplayStatus) == filter
	default:
		return string(summary.Status) == filter
	}
}

// FilterSummaries summarizes every initiative and keeps those matching filter.
func FilterSummaries(initiatives []*types.Initiative, filter string) []types.InitiativeSummary {
	out := make([]types.InitiativeSummary, 0, len(initiatives))
	for _, initiative := range initiatives {
		summary := Summarize(initiative)
		if MatchesStatusFilter(summary, filter) {
			out = append(out, summary)
		}
	}
	return out
}
