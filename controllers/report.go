// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct {
	Reports *services.ReportService
}

// Summary returns the admin dashboard figures for the current month.
func (rc *ReportController) Summary(c *gin.Context) {
	summary, err := rc.Reports.Summary(c.Request.Context(), time.Now())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Resumen", summary)
}
