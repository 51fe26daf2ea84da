package profile

import (
	"context"
	"errors"
	"strings"
)

// Profile holds the issuer details stamped on every invoice.
type Profile struct {
	BusinessName  string `json:"businessName"`
	WalletAddress string `json:"wallet"`
}

// Normalized returns a copy with surrounding whitespace removed.
func (p Profile) Normalized() Profile {
	return Profile{
		BusinessName:  strings.TrimSpace(p.BusinessName),
		WalletAddress: strings.TrimSpace(p.WalletAddress),
	}
}

// ErrNotFound is returned when no profile has been stored yet.
var ErrNotFound = errors.New("profile: not found")

// Store persists the single issuer profile.
type Store interface {
	Get(ctx context.Context) (Profile, error)
	Put(ctx context.Context, p Profile) error
}
