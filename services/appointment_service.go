package services

import (
	"context"
	"errors"
	"time"

	"salon-backend/models"
	"salon-backend/mq"
	"salon-backend/utils"

	"gorm.io/gorm"
)

type AppointmentService struct {
	db     *gorm.DB
	events mq.Publisher
}

func NewAppointmentService(db *gorm.DB, events mq.Publisher) *AppointmentService {
	return &AppointmentService{db: db, events: orNop(events)}
}

type CreateAppointmentInput struct {
	UserID      uint
	TreatmentID uint
	Time        string
	Date        string
}

// AppointmentCreated is returned by Create. Status is always pending.
type AppointmentCreated struct {
	AppointmentID     uint                     `json:"idcita"`
	UserAppointmentID uint                     `json:"idusuariocita"`
	Status            models.AppointmentStatus `json:"estado"`
	Legacy            *bool                    `json:"estadocita"`
}

type appointmentEvent struct {
	UserAppointmentID uint                     `json:"idusuariocita"`
	AppointmentID     uint                     `json:"idcita"`
	UserID            uint                     `json:"idusuario"`
	Status            models.AppointmentStatus `json:"estado"`
}

// Create books a treatment for a user. The appointment and its association
// row are written in one transaction.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*AppointmentCreated, error) {
	if in.UserID == 0 || in.TreatmentID == 0 || in.Time == "" || in.Date == "" {
		return nil, utils.Validation("Datos incompletos")
	}
	clock, err := models.ParseClock(in.Time)
	if err != nil {
		return nil, utils.Validation(err.Error())
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, utils.Validation(err.Error())
	}

	db := s.db.WithContext(ctx)
	if err := mustExist(db, &models.User{}, in.UserID, "Usuario no encontrado"); err != nil {
		return nil, err
	}
	if err := mustExist(db, &models.Treatment{}, in.TreatmentID, "Tratamiento no encontrado"); err != nil {
		return nil, err
	}

	appt := models.Appointment{TreatmentID: in.TreatmentID, RequestedTime: clock, RequestedDate: date}
	assoc := models.UserAppointment{UserID: in.UserID, Status: models.StatusPending}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appt).Error; err != nil {
			return err
		}
		assoc.AppointmentID = appt.ID
		return tx.Create(&assoc).Error
	})
	if err != nil {
		return nil, utils.Internal("Error al crear la cita", err)
	}

	publish(ctx, s.events, mq.AppointmentRequested, appointmentEvent{assoc.ID, appt.ID, assoc.UserID, assoc.Status})
	return &AppointmentCreated{
		AppointmentID:     appt.ID,
		UserAppointmentID: assoc.ID,
		Status:            assoc.Status,
		Legacy:            assoc.Status.Legacy(),
	}, nil
}

// Approve moves a booking to approved from any state.
func (s *AppointmentService) Approve(ctx context.Context, userAppointmentID uint) (*models.UserAppointment, error) {
	return s.transition(ctx, s.db.WithContext(ctx).Where("id = ?", userAppointmentID), models.StatusApproved)
}

// Reject moves a booking to rejected from any state.
func (s *AppointmentService) Reject(ctx context.Context, userAppointmentID uint) (*models.UserAppointment, error) {
	return s.transition(ctx, s.db.WithContext(ctx).Where("id = ?", userAppointmentID), models.StatusRejected)
}

// SetStatus is the variant keyed by appointment id instead of association id.
func (s *AppointmentService) SetStatus(ctx context.Context, appointmentID uint, status models.AppointmentStatus) (*models.UserAppointment, error) {
	if appointmentID == 0 {
		return nil, utils.Validation("Datos incompletos")
	}
	if !status.Valid() {
		return nil, utils.Validation("Estado inválido")
	}
	return s.transition(ctx, s.db.WithContext(ctx).Where("appointment_id = ?", appointmentID), status)
}

func (s *AppointmentService) transition(ctx context.Context, scope *gorm.DB, status models.AppointmentStatus) (*models.UserAppointment, error) {
	var assoc models.UserAppointment
	if err := scope.Take(&assoc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Cita no encontrada")
		}
		return nil, utils.Internal("Error al buscar la cita", err)
	}

	if err := s.db.WithContext(ctx).Model(&assoc).Update("status", status).Error; err != nil {
		return nil, utils.Internal("Error al actualizar la cita", err)
	}
	assoc.Status = status

	publish(ctx, s.events, statusEventKey(status), appointmentEvent{assoc.ID, assoc.AppointmentID, assoc.UserID, status})
	return &assoc, nil
}

func statusEventKey(status models.AppointmentStatus) string {
	switch status {
	case models.StatusApproved:
		return mq.AppointmentApproved
	case models.StatusRejected:
		return mq.AppointmentRejected
	}
	return mq.AppointmentPending
}

const detailColumns = `ua.id AS user_appointment_id, ua.user_id, ua.appointment_id, ua.status,
	a.treatment_id, a.requested_time, a.requested_date,
	t.name AS treatment_name, t.price AS treatment_price,
	u.first_name, u.last_name, u.phone`

func (s *AppointmentService) detailQuery(ctx context.Context, columns string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("user_appointments AS ua").
		Select(columns).
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Joins("JOIN users u ON u.id = ua.user_id")
}

// List returns every booking, newest first, optionally filtered by status.
func (s *AppointmentService) List(ctx context.Context, status *models.AppointmentStatus) ([]models.AppointmentDetail, error) {
	q := s.detailQuery(ctx, detailColumns)
	if status != nil {
		q = q.Where("ua.status = ?", *status)
	}
	rows := []models.AppointmentDetail{}
	if err := q.Order("a.requested_date DESC, a.requested_time DESC").Scan(&rows).Error; err != nil {
		return nil, utils.Internal("Error al obtener las citas", err)
	}
	return rows, nil
}

// ListByUser returns a user's bookings with the treatment category.
func (s *AppointmentService) ListByUser(ctx context.Context, userID uint) ([]models.AppointmentDetail, error) {
	rows := []models.AppointmentDetail{}
	err := s.detailQuery(ctx, detailColumns+", c.name AS category_name").
		Joins("LEFT JOIN categories c ON c.id = t.category_id").
		Where("ua.user_id = ?", userID).
		Order("a.requested_date DESC, a.requested_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener las citas del usuario", err)
	}
	return rows, nil
}

// ListPending returns bookings waiting for a decision: pending and rejected,
// oldest slot first.
func (s *AppointmentService) ListPending(ctx context.Context) ([]models.AppointmentDetail, error) {
	rows := []models.AppointmentDetail{}
	err := s.detailQuery(ctx, detailColumns).
		Where("ua.status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusRejected}).
		Order("a.requested_date ASC, a.requested_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener citas pendientes", err)
	}
	return rows, nil
}

// Calendar lists approved bookings between from and to, both inclusive and
// both optional (YYYY-MM-DD).
func (s *AppointmentService) Calendar(ctx context.Context, from, to string) ([]models.CalendarEntry, error) {
	q := s.db.WithContext(ctx).
		Table("user_appointments AS ua").
		Select(`ua.id AS user_appointment_id, a.id AS appointment_id,
			a.requested_time, a.requested_date,
			t.name AS treatment_name, t.price AS treatment_price,
			u.first_name, u.last_name, u.phone,
			i.id AS invoice_id`).
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Joins("JOIN users u ON u.id = ua.user_id").
		Joins("LEFT JOIN invoices i ON i.user_appointment_id = ua.id").
		Where("ua.status = ?", models.StatusApproved)

	var start, end models.Date
	if from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return nil, utils.Validation(err.Error())
		}
		start = d
		q = q.Where("a.requested_date >= ?", d)
	}
	if to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return nil, utils.Validation(err.Error())
		}
		end = d
		q = q.Where("a.requested_date <= ?", d)
	}
	if start != "" && end != "" {
		first, _ := start.Time(time.UTC)
		last, _ := end.Time(time.UTC)
		if utils.DaysBetween(first, last) < 0 {
			return nil, utils.Validation("La fecha final es anterior a la fecha inicial")
		}
	}

	rows := []models.CalendarEntry{}
	if err := q.Order("a.requested_date ASC, a.requested_time ASC").Scan(&rows).Error; err != nil {
		return nil, utils.Internal("Error al obtener calendario de citas", err)
	}
	for i := range rows {
		rows[i].HasInvoice = rows[i].InvoiceID != nil
	}
	return rows, nil
}

// mustExist reports a NotFound AppError when no row of model has the id.
func mustExist(db *gorm.DB, model interface{}, id uint, notFound string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return utils.Internal("Error al consultar la base de datos", err)
	}
	if count == 0 {
		return utils.NotFound(notFound)
	}
	return nil
}
