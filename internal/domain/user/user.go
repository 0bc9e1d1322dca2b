package user

import (
	"strings"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// Identity is the signed-in user as seen by the session and checkout.
// Token is the bearer credential issued by the authenticator, if any.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

func (u *User) Identity(token string) *Identity {
	return &Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Token: token,
	}
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
