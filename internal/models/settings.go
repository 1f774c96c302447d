package models

import "time"

// Settings is the singleton platform configuration row.
type Settings struct {
	ID              int       `db:"id" json:"id"`
	RegistrationFee int64     `db:"registration_fee" json:"registration_fee"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
