package event

// ApprovalMode decides whether a booking request is confirmed automatically
// or parked as pending until an organizer approves it.
type ApprovalMode string

const (
	ApprovalModeAuto   ApprovalMode = "auto"
	ApprovalModeManual ApprovalMode = "manual"
)

func (am ApprovalMode) String() string {
	return string(am)
}

func (am ApprovalMode) IsValid() bool {
	switch am {
	case ApprovalModeAuto, ApprovalModeManual:
		return true
	default:
		return false
	}
}
