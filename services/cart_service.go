package services

import (
	"context"
	"errors"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, userID uint) (*models.CartView, error) {
	if userID == 0 {
		return nil, utils.Validation("El idUsuario es obligatorio")
	}
	db := s.db.WithContext(ctx)
	cart, err := s.getOrCreateCart(db, userID)
	if err != nil {
		return nil, err
	}

	lines := []models.CartLine{}
	err = db.Table("cart_items AS ci").
		Select("ci.*, p.name AS product_name, p.price, p.image_url").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cart.ID).
		Order("ci.id DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener el carrito", err)
	}

	view := &models.CartView{CartID: cart.ID, UserID: userID, Items: lines}
	for i := range view.Items {
		view.Items[i].Subtotal = view.Items[i].Price * float64(view.Items[i].Quantity)
		view.Total += view.Items[i].Subtotal
	}
	return view, nil
}

// AddItem adds quantity units of a product to the user's cart. An existing line
// is incremented; created reports whether a new line was inserted instead.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (item *models.CartItem, created bool, err error) {
	if userID == 0 || productID == 0 {
		return nil, false, utils.Validation("Datos incompletos")
	}
	if quantity < 1 {
		return nil, false, utils.Validation("La cantidad debe ser mayor a 0")
	}
	db := s.db.WithContext(ctx)

	if err := mustExist(db, &models.Product{}, productID, "Producto no encontrado"); err != nil {
		return nil, false, err
	}
	cart, err := s.getOrCreateCart(db, userID)
	if err != nil {
		return nil, false, err
	}

	item, err = s.increment(db, cart.ID, productID, quantity)
	if err != nil || item != nil {
		return item, false, err
	}

	line := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	if err := db.Create(&line).Error; err != nil {
		if !utils.IsUniqueViolation(err) {
			return nil, false, utils.Internal("Error al agregar al carrito", err)
		}
		// Another request inserted the line first.
		item, err = s.increment(db, cart.ID, productID, quantity)
		if err == nil && item == nil {
			err = utils.Internal("Error al agregar al carrito", errors.New("cart line vanished after conflict"))
		}
		return item, false, err
	}
	return &line, true, nil
}

// increment returns nil without error when the line does not exist.
func (s *CartService) increment(db *gorm.DB, cartID, productID uint, quantity int) (*models.CartItem, error) {
	res := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return nil, utils.Internal("Error al actualizar la cantidad", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.line(db, cartID, productID)
}

// SetQuantity overwrites the quantity of an existing line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 || productID == 0 {
		return nil, utils.Validation("Datos incompletos")
	}
	if quantity < 1 {
		return nil, utils.Validation("La cantidad debe ser mayor a 0")
	}
	db := s.db.WithContext(ctx)
	cart, err := s.findCart(db, userID)
	if err != nil {
		return nil, err
	}

	res := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, utils.Internal("Error al actualizar la cantidad", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("Producto no encontrado en el carrito")
	}
	return s.line(db, cart.ID, productID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return utils.Validation("Datos incompletos")
	}
	db := s.db.WithContext(ctx)
	cart, err := s.findCart(db, userID)
	if err != nil {
		return err
	}
	res := db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return utils.Internal("Error al quitar del carrito", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Producto no encontrado en el carrito")
	}
	return nil
}

// Clear empties the user's cart and reports how many lines were removed.
// A user without a cart has nothing to clear.
func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, utils.Validation("El idCarrito es obligatorio")
	}
	db := s.db.WithContext(ctx)
	cart, err := s.findCart(db, userID)
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return 0, nil
		}
		return 0, err
	}
	res := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, utils.Internal("Error al vaciar el carrito", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *CartService) findCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).Take(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Carrito no encontrado")
		}
		return nil, utils.Internal("Error al buscar el carrito", err)
	}
	return &cart, nil
}

// getOrCreateCart relies on the unique index on carts.user_id: when two
// requests race to create the cart, the loser reads the winner's row.
func (s *CartService) getOrCreateCart(db *gorm.DB, userID uint) (*models.Cart, error) {
	cart, err := s.findCart(db, userID)
	if err == nil || utils.KindOf(err) != utils.KindNotFound {
		return cart, err
	}

	if err := mustExist(db, &models.User{}, userID, "Usuario no encontrado"); err != nil {
		return nil, err
	}
	created := models.Cart{UserID: userID}
	if err := db.Create(&created).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return s.findCart(db, userID)
		}
		return nil, utils.Internal("Error al crear el carrito", err)
	}
	return &created, nil
}

func (s *CartService) line(db *gorm.DB, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).Take(&item).Error; err != nil {
		return nil, utils.Internal("Error al leer el carrito", err)
	}
	return &item, nil
}
