package domain

import "strings"

// PlanStatus is the lifecycle state of a plan's form.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
)

var planStatusLabels = map[PlanStatus]string{
	PlanStatusDraft:      "Draft",
	PlanStatusInProgress: "In Progress",
	PlanStatusCompleted:  "Completed",
}

// Label returns a human-readable label for the status.
func (s PlanStatus) Label() string {
	if label, ok := planStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// ParsePlanStatus returns the status for a given value (case-insensitive,
// spaces and dashes accepted in place of underscores).
func ParsePlanStatus(value string) (PlanStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	status := PlanStatus(normalized)
	_, ok := planStatusLabels[status]

	return status, ok
}
