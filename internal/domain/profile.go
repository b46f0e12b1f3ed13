package domain

import "time"

// UserProfile carries extended, optional account information.
type UserProfile struct {
	UserID      string
	Phone       string
	Bio         string
	DateOfBirth *time.Time
	Address     string
	City        string
	Country     string
	GitHub      string
	LinkedIn    string
	Website     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
