package models

import "time"

type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username" validate:"required,min=3,max=64,excludesall=/"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash []byte    `json:"-" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser validates the registration fields. The id is assigned on insert.
func NewUser(userName, email string, passwordHash []byte) (*User, error) {
	u := &User{UserName: userName, Email: email, PasswordHash: passwordHash}
	if err := Validate(u); err != nil {
		return nil, err
	}
	return u, nil
}
