package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ChallengeResponse struct {
	NonceID string `json:"nonce_id"`
	Nonce   string `json:"nonce"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// ActionResponse acknowledges a relayed write: the action id is what the
// client polls (or watches over websocket) until the tx settles.
type ActionResponse struct {
	OK       bool   `json:"ok"`
	ActionID string `json:"action_id,omitempty"`
}
