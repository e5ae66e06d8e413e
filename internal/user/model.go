package user

import "time"

// Profile is the public part of a user account the order service displays.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
