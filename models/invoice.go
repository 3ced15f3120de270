package models

import "time"

type Currency struct {
	ID     uint   `gorm:"primaryKey" json:"idmoneda"`
	Name   string `gorm:"uniqueIndex;size:50;not null" json:"nombremoneda"`
	Symbol string `gorm:"size:5;not null" json:"simbolo"`
}

// Invoice bills one approved booking. The unique index on UserAppointmentID
// guarantees a booking is invoiced at most once.
type Invoice struct {
	ID                uint      `gorm:"primaryKey" json:"idfacturacita"`
	UserAppointmentID uint      `gorm:"uniqueIndex;not null" json:"idusuariocita"`
	CurrencyID        uint      `gorm:"index;not null" json:"idmoneda"`
	Total             float64   `gorm:"type:decimal(10,2);not null" json:"totalfactura"`
	CreatedAt         time.Time `json:"fechafactura"`
}

// InvoiceDocument gathers everything printed on an invoice.
type InvoiceDocument struct {
	Invoice
	CurrencyName   string    `json:"nombremoneda"`
	CurrencySymbol string    `json:"simbolo"`
	TreatmentName  string    `json:"nombretratamiento"`
	RequestedDate  Date      `json:"fechasolicitud"`
	RequestedTime  TimeOfDay `json:"horasolicitud"`
	FirstName      string    `json:"nombre"`
	LastName       string    `json:"apellido"`
	Phone          string    `json:"telefono"`
}
