// controllers/product.go
package controllers

import (
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Products *services.ProductService
}

// ProductInput defines the expected JSON structure for creating or updating a product
type ProductInput struct {
	Name        string  `json:"nombreProducto"`
	Description *string `json:"descripcionProducto"`
	Price       float64 `json:"precioProducto"`
	Stock       int     `json:"cantidadStock"`
	ImageURL    *string `json:"imagenUrl"`
}

func (in ProductInput) toService() services.ProductInput {
	return services.ProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
	}
}

func (pc *ProductController) List(c *gin.Context) {
	products, err := pc.Products.List(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Productos obtenidos", products)
}

func (pc *ProductController) Get(c *gin.Context) {
	id, ok := pathID(c, "idProducto")
	if !ok {
		return
	}
	product, err := pc.Products.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Detalle del producto", product)
}

func (pc *ProductController) Create(c *gin.Context) {
	var input ProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, err := pc.Products.Create(c.Request.Context(), input.toService())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Producto creado", product)
}

func (pc *ProductController) Update(c *gin.Context) {
	id, ok := pathID(c, "idProducto")
	if !ok {
		return
	}
	var input ProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, err := pc.Products.Update(c.Request.Context(), id, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Producto actualizado", product)
}

// Delete also drops the product from every cart.
func (pc *ProductController) Delete(c *gin.Context) {
	id, ok := pathID(c, "idProducto")
	if !ok {
		return
	}
	if err := pc.Products.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Producto eliminado", nil)
}
