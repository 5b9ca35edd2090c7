package domain

import "strings"

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
	Team   string `json:"team,omitempty"`
}

// Actor identifies who performs a mutation.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Is reports whether ident names this actor by user id or email.
func (a Actor) Is(ident string) bool {
	if ident == "" {
		return false
	}
	if ident == a.UserID {
		return true
	}
	return a.Email != "" && strings.EqualFold(ident, a.Email)
}

// DisplayName prefers the actor's name, then email, then id.
func (a Actor) DisplayName() string {
	return CoalesceStr(a.Name, a.Email, a.UserID)
}
