package models

import (
	"encoding/json"
	"time"
)

// Appointment is the requested slot for a treatment. It is written once.
type Appointment struct {
	ID            uint      `gorm:"primaryKey" json:"idcita"`
	TreatmentID   uint      `gorm:"index;not null" json:"idtratamiento"`
	RequestedTime TimeOfDay `gorm:"type:time;not null" json:"horasolicitud"`
	RequestedDate Date      `gorm:"type:date;index;not null" json:"fechasolicitud"`
	CreatedAt     time.Time `json:"-"`
}

// UserAppointment links a user to an appointment and carries its status.
type UserAppointment struct {
	ID            uint              `gorm:"primaryKey" json:"idusuariocita"`
	UserID        uint              `gorm:"index;not null" json:"idusuario"`
	AppointmentID uint              `gorm:"uniqueIndex;not null" json:"idcita"`
	Status        AppointmentStatus `gorm:"type:varchar(10);index;not null;default:'pending'" json:"estado"`
	UpdatedAt     time.Time         `json:"actualizado"`
}

// MarshalJSON adds estadocita, the null/true/false rendering older clients read.
func (ua UserAppointment) MarshalJSON() ([]byte, error) {
	type plain UserAppointment
	return json.Marshal(struct {
		plain
		Legacy *bool `json:"estadocita"`
	}{plain(ua), ua.Status.Legacy()})
}

// AppointmentDetail is a booking joined with its treatment and customer.
type AppointmentDetail struct {
	UserAppointmentID uint              `json:"idusuariocita"`
	UserID            uint              `json:"idusuario"`
	AppointmentID     uint              `json:"idcita"`
	Status            AppointmentStatus `json:"estado"`
	TreatmentID       uint              `json:"idtratamiento"`
	RequestedTime     TimeOfDay         `json:"horasolicitud"`
	RequestedDate     Date              `json:"fechasolicitud"`
	TreatmentName     string            `json:"nombretratamiento"`
	TreatmentPrice    float64           `json:"preciotratamiento"`
	CategoryName      *string           `json:"nombretipotratamiento,omitempty"`
	FirstName         string            `json:"nombre"`
	LastName          string            `json:"apellido"`
	Phone             string            `json:"telefono"`
}

func (d AppointmentDetail) MarshalJSON() ([]byte, error) {
	type plain AppointmentDetail
	return json.Marshal(struct {
		plain
		Legacy *bool `json:"estadocita"`
	}{plain(d), d.Status.Legacy()})
}

// CalendarEntry is an approved booking with its invoice, if any.
type CalendarEntry struct {
	UserAppointmentID uint      `json:"idusuariocita"`
	AppointmentID     uint      `json:"idcita"`
	RequestedTime     TimeOfDay `json:"horasolicitud"`
	RequestedDate     Date      `json:"fechasolicitud"`
	TreatmentName     string    `json:"nombretratamiento"`
	TreatmentPrice    float64   `json:"preciotratamiento"`
	FirstName         string    `json:"nombre"`
	LastName          string    `json:"apellido"`
	Phone             string    `json:"telefono"`
	InvoiceID         *uint     `json:"idfacturacita"`
	HasInvoice        bool      `gorm:"-" json:"tiene_factura"`
}
