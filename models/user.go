package models

import "time"

const (
	RoleClient = "Cliente"
	RoleAdmin  = "Administrador"
)

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"idrol"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"nombrerol"`
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"idusuario"`
	FirstName    string     `gorm:"size:100;not null" json:"nombre"`
	LastName     string     `gorm:"size:100;not null" json:"apellido"`
	Phone        string     `gorm:"size:20" json:"telefono"`
	Username     string     `gorm:"uniqueIndex;size:60;not null" json:"nombreusuario"`
	PasswordHash string     `gorm:"not null" json:"-"`
	RoleID       uint       `gorm:"index;not null" json:"idrol"`
	Role         *Role      `gorm:"foreignKey:RoleID" json:"-"`
	LastLogin    *time.Time `json:"ultimoacceso,omitempty"`
	CreatedAt    time.Time  `json:"creado"`
	UpdatedAt    time.Time  `json:"-"`
}
