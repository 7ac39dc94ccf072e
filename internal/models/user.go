package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// User is a row in the users table. The notifier only reads users — the table is
// owned by the main application backend.
type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" gorm:"uniqueIndex"`
}

// DisplayName returns the user's first name plus optional last name.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName)
	if last := strings.TrimSpace(u.LastName); last != "" {
		if name == "" {
			return last
		}
		name += " " + last
	}
	return name
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
