package dto

import "github.com/crypteax/crypteax-be/internal/auth"

// VerifyRequest carries a signed SIWE challenge. ReferralCode is accepted but
// not attributed to anyone yet.
type VerifyRequest struct {
	Message      string `json:"message"`
	Signature    string `json:"signature"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type SessionResponse struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
}
