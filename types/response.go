package types

// ApiResponse is the JSON envelope used by every endpoint except the
// booking and job routes, which have their own documented shapes.
type ApiResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
