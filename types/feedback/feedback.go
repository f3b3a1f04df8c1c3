package feedback

// FormCreateRequest creates a feedback form for an event. Creating a new
// active form supersedes older ones (the dispatcher picks the newest active
// row).
type FormCreateRequest struct {
	Title  string `json:"title" validate:"required,min=1,max=255"`
	Active *bool  `json:"active"`
}

// ResponseSubmitRequest submits answers to a form as raw JSON.
type ResponseSubmitRequest struct {
	Answers string `json:"answers" validate:"required,json"`
}
