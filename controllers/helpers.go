package controllers

import (
	"net/http"

	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst and answers 400 when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return false
	}
	return true
}

// pathID reads a positive numeric path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "El "+name+" es obligatorio")
		return 0, false
	}
	return id, true
}
