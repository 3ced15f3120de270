// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

// ReminderService texts customers the day before an approved appointment.
type ReminderService struct {
	db     *gorm.DB
	sender MessageSender
	loc    *time.Location
	now    func() time.Time
}

func NewReminderService(db *gorm.DB, sender MessageSender, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{db: db, sender: sender, loc: loc, now: time.Now}
}

type ReminderRun struct {
	Date    models.Date
	Sent    int
	Failed  int
	Skipped int
}

// SendDailyReminders handles every approved appointment booked for tomorrow.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (ReminderRun, error) {
	tomorrow := utils.BeginningOfDay(s.now().In(s.loc)).AddDate(0, 0, 1)
	return s.SendForDate(ctx, models.Date(tomorrow.Format(models.DateLayout)))
}

func (s *ReminderService) SendForDate(ctx context.Context, date models.Date) (ReminderRun, error) {
	run := ReminderRun{Date: date}
	db := s.db.WithContext(ctx)
	log.Printf("[REMINDER] processing appointments for %s", date)

	var due []models.AppointmentDetail
	err := db.Table("user_appointments AS ua").
		Select(detailColumns).
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Joins("JOIN users u ON u.id = ua.user_id").
		Where("ua.status = ? AND a.requested_date = ?", models.StatusApproved, date).
		Where("NOT EXISTS (SELECT 1 FROM reminder_logs r WHERE r.user_appointment_id = ua.id AND r.status = ?)", models.ReminderSent).
		Order("a.requested_time").
		Scan(&due).Error
	if err != nil {
		return run, fmt.Errorf("load due appointments: %w", err)
	}

	for _, appt := range due {
		if appt.Phone == "" {
			run.Skipped++
			continue
		}
		message := fmt.Sprintf("Hola %s, te recordamos tu cita de %s el %s a las %s.",
			appt.FirstName, appt.TreatmentName, appt.RequestedDate, appt.RequestedTime)

		entry := models.ReminderLog{
			UserAppointmentID: appt.UserAppointmentID,
			UserID:            appt.UserID,
			Phone:             appt.Phone,
			Message:           message,
			Status:            models.ReminderSent,
			SentAt:            s.now(),
		}
		sid, err := s.sender.Send(ctx, appt.Phone, message)
		if err != nil {
			log.Printf("[REMINDER] failed to send message to %s: %v", appt.Phone, err)
			entry.Status = models.ReminderFailed
			entry.ErrorMessage = err.Error()
			run.Failed++
		} else {
			entry.MessageSID = sid
			run.Sent++
		}

		if err := db.Create(&entry).Error; err != nil {
			log.Printf("[REMINDER] failed to log reminder for booking %d: %v", appt.UserAppointmentID, err)
		}
	}

	log.Printf("[REMINDER] %s done: sent=%d failed=%d skipped=%d", date, run.Sent, run.Failed, run.Skipped)
	return run, nil
}
