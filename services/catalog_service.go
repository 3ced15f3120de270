package services

import (
	"context"
	"errors"
	"strings"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

// CatalogService manages treatments and their categories.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type TreatmentInput struct {
	Name        string
	Description *string
	Price       float64
	ImageURL    *string
	CategoryID  uint
}

func (in *TreatmentInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimOptional(in.Description)
	in.ImageURL = trimOptional(in.ImageURL)
	switch {
	case in.Name == "":
		return utils.Validation("El nombre del tratamiento es obligatorio")
	case in.Price <= 0:
		return utils.Validation("El precio debe ser mayor a 0")
	case in.CategoryID == 0:
		return utils.Validation("El tipo de tratamiento es obligatorio")
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *CatalogService) treatmentQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("treatments AS t").
		Select("t.*, c.name AS category_name").
		Joins("JOIN categories c ON c.id = t.category_id")
}

func (s *CatalogService) ListTreatments(ctx context.Context) ([]models.TreatmentWithCategory, error) {
	rows := []models.TreatmentWithCategory{}
	if err := s.treatmentQuery(ctx).Order("c.name, t.name").Scan(&rows).Error; err != nil {
		return nil, utils.Internal("Error al obtener tratamientos", err)
	}
	return rows, nil
}

func (s *CatalogService) ListTreatmentsByCategory(ctx context.Context, categoryID uint) ([]models.TreatmentWithCategory, error) {
	rows := []models.TreatmentWithCategory{}
	err := s.treatmentQuery(ctx).Where("t.category_id = ?", categoryID).Order("t.name").Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener tratamientos", err)
	}
	return rows, nil
}

func (s *CatalogService) GetTreatment(ctx context.Context, id uint) (*models.TreatmentWithCategory, error) {
	var row models.TreatmentWithCategory
	if err := s.treatmentQuery(ctx).Where("t.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Tratamiento no encontrado")
		}
		return nil, utils.Internal("Error al obtener el tratamiento", err)
	}
	return &row, nil
}

func (s *CatalogService) CreateTreatment(ctx context.Context, in TreatmentInput) (*models.Treatment, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := s.categoryExists(db, in.CategoryID); err != nil {
		return nil, err
	}

	t := models.Treatment{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, treatmentWriteError(err)
	}
	return &t, nil
}

// UpdateTreatment replaces the editable fields. The price of a treatment that
// appointments already reference cannot change.
func (s *CatalogService) UpdateTreatment(ctx context.Context, id uint, in TreatmentInput) (*models.Treatment, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var t models.Treatment
	if err := db.Take(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Tratamiento no encontrado")
		}
		return nil, utils.Internal("Error al obtener el tratamiento", err)
	}
	if err := s.categoryExists(db, in.CategoryID); err != nil {
		return nil, err
	}
	if in.Price != t.Price {
		referenced, err := s.treatmentReferenced(db, id)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, utils.Conflict("No se puede cambiar el precio de un tratamiento con citas registradas")
		}
	}

	err := db.Model(&t).Updates(map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"image_url":   in.ImageURL,
		"category_id": in.CategoryID,
	}).Error
	if err != nil {
		return nil, treatmentWriteError(err)
	}
	t.Name, t.Description, t.Price, t.ImageURL, t.CategoryID = in.Name, in.Description, in.Price, in.ImageURL, in.CategoryID
	return &t, nil
}

func (s *CatalogService) DeleteTreatment(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	referenced, err := s.treatmentReferenced(db, id)
	if err != nil {
		return err
	}
	if referenced {
		return utils.Conflict("No se puede eliminar un tratamiento con citas registradas")
	}
	res := db.Delete(&models.Treatment{}, id)
	if res.Error != nil {
		return utils.Internal("Error al eliminar el tratamiento", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Tratamiento no encontrado")
	}
	return nil
}

func (s *CatalogService) treatmentReferenced(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&models.Appointment{}).Where("treatment_id = ?", id).Count(&count).Error; err != nil {
		return false, utils.Internal("Error al consultar citas", err)
	}
	return count > 0, nil
}

func (s *CatalogService) categoryExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return utils.Internal("Error al consultar tipos de tratamiento", err)
	}
	if count == 0 {
		return utils.Validation("El tipo de tratamiento no existe")
	}
	return nil
}

func treatmentWriteError(err error) error {
	switch {
	case utils.IsUniqueViolation(err):
		return utils.Conflict("Ya existe un tratamiento con ese nombre")
	case utils.IsForeignKeyViolation(err):
		return utils.Validation("El tipo de tratamiento no existe")
	}
	return utils.Internal("Error al guardar el tratamiento", err)
}

// ListCategories returns every category with the number of treatments in it.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	rows := []models.CategoryWithCount{}
	err := s.db.WithContext(ctx).
		Table("categories AS c").
		Select("c.id, c.name, (SELECT COUNT(*) FROM treatments t WHERE t.category_id = c.id) AS treatment_count").
		Order("c.name").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener tipos de tratamiento", err)
	}
	return rows, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Validation("El nombre del tipo es obligatorio")
	}
	c := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, categoryWriteError(err)
	}
	return &c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Validation("El nombre del tipo es obligatorio")
	}
	res := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, categoryWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("Tipo de tratamiento no encontrado")
	}
	return &models.Category{ID: id, Name: name}, nil
}

// DeleteCategory refuses to remove a category that still has treatments.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Treatment{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return utils.Internal("Error al consultar tratamientos", err)
	}
	if count > 0 {
		return utils.Conflict("No se puede eliminar el tipo porque tiene tratamientos asociados").
			With("cantidad_tratamientos", count)
	}
	res := db.Delete(&models.Category{}, id)
	if res.Error != nil {
		return utils.Internal("Error al eliminar el tipo de tratamiento", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Tipo de tratamiento no encontrado")
	}
	return nil
}

func categoryWriteError(err error) error {
	if utils.IsUniqueViolation(err) {
		return utils.Conflict("Ya existe un tipo de tratamiento con ese nombre")
	}
	return utils.Internal("Error al guardar el tipo de tratamiento", err)
}
