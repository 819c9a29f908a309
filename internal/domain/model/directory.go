package model

import "strings"

// Role is an account's marketplace role.
type Role string

const (
	RoleArtist  Role = "artist"
	RoleCurator Role = "curator"
	RoleAdmin   Role = "admin"
)

// Profile is the subset of an account the dispatcher reads from the directory.
type Profile struct {
	ID       string
	Email    string
	FullName string
	Username string
	Role     Role
}

// DisplayName returns the best human-readable name for the profile:
// full name, then username, then the local part of the email address.
func (p *Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.Username); name != "" {
		return name
	}
	return LocalPart(p.Email)
}

// Recipient returns the mail recipient for the profile.
// ok is false when the profile has no reachable address.
func (p *Profile) Recipient() (Recipient, bool) {
	addr := strings.TrimSpace(p.Email)
	if addr == "" {
		return Recipient{}, false
	}
	return Recipient{Address: addr, DisplayName: p.DisplayName()}, true
}

// Playlist is the subset of a playlist row needed to route submissions.
type Playlist struct {
	ID        string
	Name      string
	CuratorID string
}

// Recipient is a resolved email destination.
type Recipient struct {
	Address     string
	DisplayName string
}

// LocalPart returns the part of an address before the '@'.
func LocalPart(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.IndexByte(address, '@'); i >= 0 {
		return address[:i]
	}
	return address
}
