package qr

// CodeCreateRequest issues a new QR code for an event.
type CodeCreateRequest struct {
	Label string `json:"label" validate:"omitempty,max=255"`
}

// ScanRequest checks the caller in against a posted QR token.
type ScanRequest struct {
	Token string `json:"token" validate:"required,max=64"`
}
