package sim

// AttemptRequest submits a free-text response to a clinical scenario.
type AttemptRequest struct {
	Answer string `json:"answer" validate:"required,min=1,max=20000"`
}
