package models

import "time"

// Cart is unique per user; the index is what makes get-or-create safe.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"idcarrito"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"idusuario"`
	CreatedAt time.Time `json:"-"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"idcarritoxproducto"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"idcarrito"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"idproducto"`
	Quantity  int       `gorm:"not null" json:"cantidadproducto"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type CartLine struct {
	CartItem
	ProductName string  `json:"nombreproducto"`
	Price       float64 `json:"precioproducto"`
	ImageURL    *string `json:"imagenurl"`
	Subtotal    float64 `json:"subtotal"`
}

type CartView struct {
	CartID uint       `json:"idcarrito"`
	UserID uint       `json:"idusuario"`
	Items  []CartLine `json:"productos"`
	Total  float64    `json:"total"`
}
