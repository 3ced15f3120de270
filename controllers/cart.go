// controllers/cart.go
package controllers

import (
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

// CartController exposes the shopping cart. Clients address a cart with
// the id of the user that owns it, sent as idCarrito.
type CartController struct {
	Carts *services.CartService
}

type CartItemInput struct {
	CartID    uint `json:"idCarrito"`
	ProductID uint `json:"idProducto"`
	Quantity  int  `json:"cantidad"`
}

type CartQuantityInput struct {
	CartID      uint `json:"idCarrito"`
	ProductID   uint `json:"idProducto"`
	NewQuantity *int `json:"nuevaCantidad"`
}

func (cc *CartController) Get(c *gin.Context) {
	userID, ok := pathID(c, "idUsuario")
	if !ok {
		return
	}
	cart, err := cc.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Carrito obtenido", cart)
}

// Add answers 201 for a new line and 200 when an existing line grew.
func (cc *CartController) Add(c *gin.Context) {
	var input CartItemInput
	if !bindJSON(c, &input) {
		return
	}
	if input.CartID == 0 || input.ProductID == 0 || input.Quantity == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Datos incompletos")
		return
	}

	item, created, err := cc.Carts.AddItem(c.Request.Context(), input.CartID, input.ProductID, input.Quantity)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if created {
		utils.RespondOK(c, http.StatusCreated, "Producto agregado al carrito", item)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Cantidad actualizada", item)
}

func (cc *CartController) SetQuantity(c *gin.Context) {
	var input CartQuantityInput
	if !bindJSON(c, &input) {
		return
	}
	if input.CartID == 0 || input.ProductID == 0 || input.NewQuantity == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Datos incompletos")
		return
	}

	item, err := cc.Carts.SetQuantity(c.Request.Context(), input.CartID, input.ProductID, *input.NewQuantity)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Cantidad actualizada", item)
}

func (cc *CartController) Remove(c *gin.Context) {
	var input CartItemInput
	if !bindJSON(c, &input) {
		return
	}
	if err := cc.Carts.RemoveItem(c.Request.Context(), input.CartID, input.ProductID); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Producto eliminado del carrito", nil)
}

func (cc *CartController) Clear(c *gin.Context) {
	var input CartItemInput
	if !bindJSON(c, &input) {
		return
	}
	removed, err := cc.Carts.Clear(c.Request.Context(), input.CartID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Carrito vaciado", gin.H{"productosEliminados": removed})
}
