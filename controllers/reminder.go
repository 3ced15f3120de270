// controllers/reminder.go
package controllers

import (
	"net/http"

	"salon-backend/models"
	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReminderController struct {
	Reminders *services.ReminderService
}

// SendRemindersInput selects the appointment date to remind. Empty means tomorrow.
type SendRemindersInput struct {
	Date string `json:"fecha"`
}

// Send runs the reminder job on demand. Bookings that were already reminded
// are skipped, so repeating a run is safe.
func (rc *ReminderController) Send(c *gin.Context) {
	var input SendRemindersInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}

	var (
		run services.ReminderRun
		err error
	)
	if input.Date == "" {
		run, err = rc.Reminders.SendDailyReminders(c.Request.Context())
	} else {
		date, perr := models.ParseDate(input.Date)
		if perr != nil {
			utils.RespondWithError(c, http.StatusBadRequest, perr.Error())
			return
		}
		run, err = rc.Reminders.SendForDate(c.Request.Context(), date)
	}
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Error al enviar recordatorios", err))
		return
	}
	utils.RespondOK(c, http.StatusOK, "Recordatorios procesados", gin.H{
		"fecha":    run.Date,
		"enviados": run.Sent,
		"fallidos": run.Failed,
		"omitidos": run.Skipped,
	})
}
