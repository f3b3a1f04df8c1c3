package booking

// BookingCreateRequest is the payload for POST /bookings.
type BookingCreateRequest struct {
	EventID       uint    `json:"event_id" validate:"required"`
	Confirmation1 bool    `json:"confirmation_1"`
	Confirmation2 bool    `json:"confirmation_2"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

// BookingUpdateRequest is the payload for PUT /bookings/:id. Regular users
// may only set status to cancelled (with an optional reason) on their own
// booking; everything else needs an admin-equivalent role.
type BookingUpdateRequest struct {
	Status             *string `json:"status" validate:"omitempty,oneof=pending confirmed waitlist cancelled attended no_show"`
	CancellationReason *string `json:"cancellation_reason" validate:"omitempty,max=2000"`
	Notes              *string `json:"notes" validate:"omitempty,max=2000"`
	CheckedIn          *bool   `json:"checked_in"`
}
