package services

import (
	"context"
	"errors"
	"strings"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

type ProductInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
	ImageURL    *string
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimOptional(in.Description)
	in.ImageURL = trimOptional(in.ImageURL)
	switch {
	case in.Name == "":
		return utils.Validation("El nombre del producto es obligatorio")
	case in.Price <= 0:
		return utils.Validation("El precio debe ser mayor a 0")
	case in.Stock < 0:
		return utils.Validation("La cantidad en stock debe ser 0 o mayor")
	}
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, utils.Internal("Error al obtener productos", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Take(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Producto no encontrado")
		}
		return nil, utils.Internal("Error al obtener el producto", err)
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, productWriteError(err)
	}
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"stock":       in.Stock,
		"image_url":   in.ImageURL,
	}).Error
	if err != nil {
		return nil, productWriteError(err)
	}
	p.Name, p.Description, p.Price, p.Stock, p.ImageURL = in.Name, in.Description, in.Price, in.Stock, in.ImageURL
	return p, nil
}

// Delete removes the product and every cart line holding it.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("Producto no encontrado")
		}
		return nil
	})
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return err
		}
		return utils.Internal("Error al eliminar el producto", err)
	}
	return nil
}

func productWriteError(err error) error {
	if utils.IsUniqueViolation(err) {
		return utils.Conflict("Ya existe un producto con ese nombre")
	}
	return utils.Internal("Error al guardar el producto", err)
}
