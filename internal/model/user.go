package model

import "time"

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleAuthor     UserRole = "AUTHOR"
	UserRoleEditor     UserRole = "EDITOR"
	UserRoleSubscriber UserRole = "SUBSCRIBER"
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Bio            string    `json:"bio,omitempty"`
	Role           UserRole  `json:"role"`
	Image          string    `json:"image,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
