package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"idproducto"`
	Name        string    `gorm:"uniqueIndex;size:150;not null" json:"nombreproducto"`
	Description *string   `gorm:"type:text" json:"descripcionproducto"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"precioproducto"`
	Stock       int       `gorm:"not null;default:0" json:"cantidadstock"`
	ImageURL    *string   `json:"imagenurl"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
