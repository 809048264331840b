package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. UID is the login identifier and the subject of issued credentials.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UID          string    `json:"uid" db:"uid"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	Email        string    `json:"email" db:"email"`
	Roles        []string  `json:"roles" db:"roles"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public identity block returned by sign-in and sign-up
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	UID  string    `json:"uid"`
	Name string    `json:"name"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(uid, name, passwordHash, phoneNumber, email string, roles []string) *User {
	now := time.Now().UTC()
	r := make([]string, len(roles))
	copy(r, roles)
	return &User{
		ID:           uuid.New(),
		UID:          uid,
		Name:         name,
		PasswordHash: passwordHash,
		PhoneNumber:  phoneNumber,
		Email:        email,
		Roles:        r,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Update replaces the mutable profile fields
func (u *User) Update(name, passwordHash, phoneNumber string) {
	u.Name = name
	u.PasswordHash = passwordHash
	u.PhoneNumber = phoneNumber
	u.UpdatedAt = time.Now().UTC()
}

// Summary returns the public identity block of the user
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UID: u.UID, Name: u.Name}
}
