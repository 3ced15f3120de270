package models

import "time"

const (
	ReminderSent   = "sent"
	ReminderFailed = "failed"
)

type ReminderLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserAppointmentID uint      `gorm:"index;not null" json:"idusuariocita"`
	UserID            uint      `gorm:"index;not null" json:"idusuario"`
	Phone             string    `gorm:"size:20" json:"telefono"`
	Message           string    `gorm:"type:text" json:"mensaje"`
	Status            string    `gorm:"type:varchar(20)" json:"estado"` // sent, failed
	ErrorMessage      string    `gorm:"type:text" json:"error,omitempty"`
	MessageSID        string    `gorm:"size:64" json:"sid,omitempty"`
	SentAt            time.Time `json:"enviado"`
}
