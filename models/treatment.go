package models

import "time"

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"idtipotratamiento"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"nombretipotratamiento"`
}

type Treatment struct {
	ID          uint      `gorm:"primaryKey" json:"idtratamiento"`
	Name        string    `gorm:"uniqueIndex;size:150;not null" json:"nombretratamiento"`
	Description *string   `gorm:"type:text" json:"descripciontratamiento"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"preciotratamiento"`
	ImageURL    *string   `json:"imagenurl"`
	CategoryID  uint      `gorm:"index;not null" json:"idtipotratamiento"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TreatmentWithCategory is the read model used by the catalog listings.
type TreatmentWithCategory struct {
	Treatment
	CategoryName string `json:"nombretipotratamiento"`
}

type CategoryWithCount struct {
	Category
	TreatmentCount int64 `json:"cantidad_tratamientos"`
}
