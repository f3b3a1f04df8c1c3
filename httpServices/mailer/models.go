package mailer

type SendMessageRequest struct {
	To       string            `json:"to"`
	ToName   string            `json:"to_name,omitempty"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars,omitempty"`
}

type SendMessageResponse struct {
	Accepted  bool   `json:"accepted"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message,omitempty"`
}
