package event

// EventCreateRequest is the payload for POST /events.
type EventCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=10000"`
	Location    string `json:"location" validate:"omitempty,max=255"`

	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`

	BookingEnabled            bool     `json:"booking_enabled"`
	BookingCapacity           *int     `json:"booking_capacity" validate:"omitempty,min=0"`
	AllowWaitlist             bool     `json:"allow_waitlist"`
	BookingDeadlineHours      int      `json:"booking_deadline_hours" validate:"min=0"`
	CancellationDeadlineHours int      `json:"cancellation_deadline_hours" validate:"min=0"`
	AllowedRoles              []string `json:"allowed_roles" validate:"omitempty,dive,oneof=student educator admin meded_team ctf"`
	ApprovalMode              string   `json:"approval_mode" validate:"omitempty,oneof=auto manual"`

	FeedbackEnabled     bool `json:"feedback_enabled"`
	QRAttendanceEnabled bool `json:"qr_attendance_enabled"`

	RequireConfirmation1 bool   `json:"require_confirmation_1"`
	Confirmation1Label   string `json:"confirmation_1_label" validate:"omitempty,max=500"`
	RequireConfirmation2 bool   `json:"require_confirmation_2"`
	Confirmation2Label   string `json:"confirmation_2_label" validate:"omitempty,max=500"`
}

// EventUpdateRequest mirrors the create payload; nil fields are untouched.
type EventUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Location    *string `json:"location" validate:"omitempty,max=255"`

	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=15:04"`

	BookingEnabled            *bool     `json:"booking_enabled"`
	BookingCapacity           *int      `json:"booking_capacity" validate:"omitempty,min=0"`
	AllowWaitlist             *bool     `json:"allow_waitlist"`
	BookingDeadlineHours      *int      `json:"booking_deadline_hours" validate:"omitempty,min=0"`
	CancellationDeadlineHours *int      `json:"cancellation_deadline_hours" validate:"omitempty,min=0"`
	AllowedRoles              *[]string `json:"allowed_roles" validate:"omitempty,dive,oneof=student educator admin meded_team ctf"`
	ApprovalMode              *string   `json:"approval_mode" validate:"omitempty,oneof=auto manual"`

	FeedbackEnabled     *bool `json:"feedback_enabled"`
	QRAttendanceEnabled *bool `json:"qr_attendance_enabled"`

	RequireConfirmation1 *bool   `json:"require_confirmation_1"`
	Confirmation1Label   *string `json:"confirmation_1_label" validate:"omitempty,max=500"`
	RequireConfirmation2 *bool   `json:"require_confirmation_2"`
	Confirmation2Label   *string `json:"confirmation_2_label" validate:"omitempty,max=500"`
}
