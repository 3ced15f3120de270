// controllers/treatment.go
package controllers

import (
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

// CatalogController serves treatments and their categories.
type CatalogController struct {
	Catalog *services.CatalogService
}

type CategoryInput struct {
	Name string `json:"nombreTipo"`
}

type TreatmentInput struct {
	Name        string  `json:"nombreTratamiento"`
	Description *string `json:"descripcionTratamiento"`
	Price       float64 `json:"precioTratamiento"`
	ImageURL    *string `json:"imagenUrl"`
	CategoryID  uint    `json:"idTipoTratamiento"`
}

func (in TreatmentInput) toService() services.TreatmentInput {
	return services.TreatmentInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
}

func (cc *CatalogController) ListTreatments(c *gin.Context) {
	rows, err := cc.Catalog.ListTreatments(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tratamientos obtenidos", rows)
}

func (cc *CatalogController) ListCategories(c *gin.Context) {
	rows, err := cc.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tipos de tratamiento obtenidos", rows)
}

func (cc *CatalogController) ListByCategory(c *gin.Context) {
	id, ok := pathID(c, "idTipo")
	if !ok {
		return
	}
	rows, err := cc.Catalog.ListTreatmentsByCategory(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tratamientos obtenidos", rows)
}

func (cc *CatalogController) GetTreatment(c *gin.Context) {
	id, ok := pathID(c, "idTratamiento")
	if !ok {
		return
	}
	row, err := cc.Catalog.GetTreatment(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Detalle del tratamiento", row)
}

func (cc *CatalogController) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	category, err := cc.Catalog.CreateCategory(c.Request.Context(), input.Name)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Tipo de tratamiento creado", category)
}

func (cc *CatalogController) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "idCategoria")
	if !ok {
		return
	}
	var input CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	category, err := cc.Catalog.UpdateCategory(c.Request.Context(), id, input.Name)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tipo de tratamiento actualizado", category)
}

func (cc *CatalogController) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "idCategoria")
	if !ok {
		return
	}
	if err := cc.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tipo de tratamiento eliminado", nil)
}

func (cc *CatalogController) CreateTreatment(c *gin.Context) {
	var input TreatmentInput
	if !bindJSON(c, &input) {
		return
	}
	treatment, err := cc.Catalog.CreateTreatment(c.Request.Context(), input.toService())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Tratamiento creado", treatment)
}

func (cc *CatalogController) UpdateTreatment(c *gin.Context) {
	id, ok := pathID(c, "idTratamiento")
	if !ok {
		return
	}
	var input TreatmentInput
	if !bindJSON(c, &input) {
		return
	}
	treatment, err := cc.Catalog.UpdateTreatment(c.Request.Context(), id, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tratamiento actualizado", treatment)
}

func (cc *CatalogController) DeleteTreatment(c *gin.Context) {
	id, ok := pathID(c, "idTratamiento")
	if !ok {
		return
	}
	if err := cc.Catalog.DeleteTreatment(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Tratamiento eliminado", nil)
}
