package dto

import "github.com/crypteax/crypteax-be/internal/profile"

// ProfileResponse is a profile mutation result, with a renewed session token
// when the caller's own record changed.
type ProfileResponse struct {
	profile.Result
	Token string `json:"token,omitempty"`
}
