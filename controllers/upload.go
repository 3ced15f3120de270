// controllers/upload.go
package controllers

import (
	"io"
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Uploads *services.UploadService
}

// UploadImage takes the multipart field "image" and an optional "folder".
func (uc *UploadController) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+1<<20)

	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "No se recibió ninguna imagen")
		return
	}
	if file.Size > services.MaxImageSize {
		utils.RespondWithError(c, http.StatusBadRequest, "La imagen no puede superar 5MB")
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Error al leer la imagen", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageSize+1))
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Error al leer la imagen", err))
		return
	}

	img, err := uc.Uploads.UploadImage(c.Request.Context(), data, c.PostForm("folder"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Imagen subida exitosamente", img)
}
