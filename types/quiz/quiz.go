package quiz

// AttemptRequest submits answers as option indexes keyed by question order.
type AttemptRequest struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}
