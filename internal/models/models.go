package models

import "time"

// UnknownLocation is the sentinel for a location that could not be derived.
const UnknownLocation = "Unknown"

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (l Location) Undetermined() bool {
	return l.City == "" || l.City == UnknownLocation
}

type User struct {
	ID           string     `gorm:"primaryKey"               json:"id"`
	FirstName    string     `gorm:"not null"                 json:"firstName"`
	LastName     string     `gorm:"not null"                 json:"lastName"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null;default:user"    json:"role"`
	Package      string     `json:"package"`
	Courses      []string   `gorm:"serializer:json"          json:"courses"`
	City         string     `gorm:"not null;default:Unknown" json:"city"`
	State        string     `gorm:"not null;default:Unknown" json:"state"`
	Country      string     `gorm:"not null;default:Unknown" json:"country"`
	ResetToken          string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
}

func (u *User) Location() Location {
	return Location{City: u.City, State: u.State, Country: u.Country}
}

type Instructor struct {
	ID           string    `gorm:"primaryKey"           json:"id"`
	FirstName    string    `gorm:"not null"             json:"firstName"`
	LastName     string    `gorm:"not null"             json:"lastName"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	CreatedAt    time.Time `json:"-"`
}
