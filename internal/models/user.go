package models

import "time"

// User is the persisted account behind a wallet address.
type User struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Username     string    `json:"username"`
	Image        *string   `json:"image"`
	Role         Role      `json:"role"`
	Points       int       `json:"points"`
	ReferralCode string    `json:"referralCode"`
	IsBlocked    bool      `json:"isBlocked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicProfile is the read-only projection served for address lookups.
type PublicProfile struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Image        *string `json:"image"`
	Role         Role    `json:"role"`
	Address      string  `json:"address"`
	IsBlocked    bool    `json:"isBlocked"`
	ReferralCode string  `json:"referralCode"`
	Points       int     `json:"points"`
}

// Profile returns the public projection of u.
func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Username:     u.Username,
		Image:        u.Image,
		Role:         u.Role,
		Address:      u.Address,
		IsBlocked:    u.IsBlocked,
		ReferralCode: u.ReferralCode,
		Points:       u.Points,
	}
}
