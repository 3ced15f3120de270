package models

import "time"

// OTPCode backs the database code store. Address is the purpose-qualified
// phone number the code was issued for.
type OTPCode struct {
	Address   string    `gorm:"primaryKey;size:64"`
	Code      string    `gorm:"size:12;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
