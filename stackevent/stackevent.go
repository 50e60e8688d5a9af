package stackevent

import (
	"slices"
	"strings"
	"time"
)

// StackType is the resource type CloudFormation reports
// for a stack itself, including nested stacks.
const StackType = "AWS::CloudFormation::Stack"

// StackEvent is a single entry of a stack's event
// history.
type StackEvent struct {
	EventID            string    `json:"eventId"`
	StackName          string    `json:"stackName"`
	StackID            string    `json:"stackId"`
	Timestamp          time.Time `json:"timestamp"`
	LogicalResourceID  string    `json:"logicalResourceId"`
	ResourceType       string    `json:"resourceType"`
	ResourceStatus     string    `json:"resourceStatus"`
	StatusReason       string    `json:"resourceStatusReason,omitempty"`
	PhysicalResourceID string    `json:"physicalResourceId,omitempty"`
}

//nolint:gochecknoglobals // fixed status tables
var (
	terminalSuffixes = []string{
		"_COMPLETE", "_FAILED", "_SKIPPED",
	}

	successStatuses = []string{
		"CREATE_COMPLETE",
		"DELETE_COMPLETE",
		"UPDATE_COMPLETE",
		"IMPORT_COMPLETE",
	}
)

// NameFromID returns the display name of a stack. ARN
// identifiers (arn:aws:cloudformation:...:stack/NAME/ID)
// are reduced to NAME; anything else is returned as-is.
func NameFromID(id string) string {
	if !strings.HasPrefix(id, "arn:") {
		return id
	}

	parts := strings.Split(id, "/")

	const nameIdx = 1
	if len(parts) <= nameIdx || parts[nameIdx] == "" {
		return id
	}

	return parts[nameIdx]
}

// IsTerminalStatus reports whether status ends an
// operation, successfully or not.
func IsTerminalStatus(status string) bool {
	for _, suffix := range terminalSuffixes {
		if strings.HasSuffix(status, suffix) {
			return true
		}
	}

	return false
}

// IsSuccessStatus reports whether status is one of the
// terminal statuses that denote success.
func IsSuccessStatus(status string) bool {
	return slices.Contains(successStatuses, status)
}

// IsTerminal reports whether ev is the terminal event of
// an execution of the stack named stackName.
func IsTerminal(stackName string, ev StackEvent) bool {
	return ev.ResourceType == StackType &&
		ev.LogicalResourceID == stackName &&
		IsTerminalStatus(ev.ResourceStatus)
}

// IsNestedStack reports whether ev describes a child of
// the stack named stackName: a stack resource other than
// the stack itself that already has a physical id.
func IsNestedStack(stackName string, ev StackEvent) bool {
	return ev.ResourceType == StackType &&
		ev.LogicalResourceID != stackName &&
		ev.PhysicalResourceID != ""
}

// FindTerminal returns the first event of evs that is
// terminal for stackName, or nil.
func FindTerminal(
	stackName string,
	evs []StackEvent,
) *StackEvent {
	for i := range evs {
		if IsTerminal(stackName, evs[i]) {
			return &evs[i]
		}
	}

	return nil
}
