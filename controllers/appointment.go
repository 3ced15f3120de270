// controllers/appointment.go
package controllers

import (
	"net/http"

	"salon-backend/models"
	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentController handles booking requests and the admin approval flow.
type AppointmentController struct {
	Appointments *services.AppointmentService
}

// CreateAppointmentInput defines the expected JSON structure for a booking request
type CreateAppointmentInput struct {
	UserID        uint   `json:"idUsuario"`
	TreatmentID   uint   `json:"idTratamiento"`
	RequestedTime string `json:"horaSolicitud"`
	RequestedDate string `json:"fechaSolicitud"`
}

// SetStatusInput is the body of the direct status update.
type SetStatusInput struct {
	AppointmentID uint               `json:"idCita"`
	NewStatus     models.StatusInput `json:"nuevoEstado"`
}

// Create books an appointment. The association starts pending.
func (ac *AppointmentController) Create(c *gin.Context) {
	var input CreateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}

	created, err := ac.Appointments.Create(c.Request.Context(), services.CreateAppointmentInput{
		UserID:      input.UserID,
		TreatmentID: input.TreatmentID,
		Time:        input.RequestedTime,
		Date:        input.RequestedDate,
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Cita solicitada exitosamente", created)
}

func (ac *AppointmentController) SetStatus(c *gin.Context) {
	var input SetStatusInput
	if !bindJSON(c, &input) {
		return
	}
	if input.AppointmentID == 0 || !input.NewStatus.Set {
		utils.RespondWithError(c, http.StatusBadRequest, "Datos incompletos")
		return
	}

	updated, err := ac.Appointments.SetStatus(c.Request.Context(), input.AppointmentID, input.NewStatus.Status)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Estado de cita actualizado", updated)
}

// List returns every booking, filtered by ?estadoCita= when present.
func (ac *AppointmentController) List(c *gin.Context) {
	var filter *models.AppointmentStatus
	if raw, ok := c.GetQuery("estadoCita"); ok && raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Estado inválido")
			return
		}
		filter = &status
	}

	rows, err := ac.Appointments.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Citas obtenidas", rows)
}

func (ac *AppointmentController) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "idUsuario")
	if !ok {
		return
	}
	rows, err := ac.Appointments.ListByUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Citas del usuario", rows)
}

func (ac *AppointmentController) Pending(c *gin.Context) {
	rows, err := ac.Appointments.ListPending(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Citas pendientes", rows)
}

func (ac *AppointmentController) Approve(c *gin.Context) {
	id, ok := pathID(c, "idUsuarioCita")
	if !ok {
		return
	}
	updated, err := ac.Appointments.Approve(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Cita aprobada exitosamente", updated)
}

func (ac *AppointmentController) Reject(c *gin.Context) {
	id, ok := pathID(c, "idUsuarioCita")
	if !ok {
		return
	}
	updated, err := ac.Appointments.Reject(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Cita rechazada", updated)
}

// Calendar lists approved bookings between ?fechaInicio and ?fechaFin.
func (ac *AppointmentController) Calendar(c *gin.Context) {
	rows, err := ac.Appointments.Calendar(c.Request.Context(), c.Query("fechaInicio"), c.Query("fechaFin"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Calendario de citas", rows)
}
