package api

import "time"

// TokenInfoResponse describes the bearer token of the current request.
type TokenInfoResponse struct {
	Subject   string     `json:"subject"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
