package entities

import "crypto/ed25519"

// AccountPlatform tags how an account was connected
type AccountPlatform string

const (
	AccountPlatformFarcaster         AccountPlatform = "farcaster"
	AccountPlatformFarcasterReadOnly AccountPlatform = "farcaster_local_readonly"
)

// Account is the signing identity a cast is published under
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	FID      uint64          `json:"fid"`
	Platform AccountPlatform `json:"platform"`

	// SignerPrivateKey is an ed25519 private key; nil means the account can only read
	SignerPrivateKey ed25519.PrivateKey `json:"-"`
}

// IsReadOnly reports whether the account lacks signing material
func (a *Account) IsReadOnly() bool {
	return a.Platform == AccountPlatformFarcasterReadOnly || len(a.SignerPrivateKey) != ed25519.PrivateKeySize
}
