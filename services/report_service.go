package services

import (
	"context"
	"time"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

// ReportService builds the admin dashboard figures.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type Summary struct {
	Pending  int64 `json:"pendientes"`
	Approved int64 `json:"aprobadas"`
	Rejected int64 `json:"rechazadas"`
	Upcoming int64 `json:"proximasAprobadas"`

	InvoicesThisMonth     int64   `json:"facturasMes"`
	CurrentMonthRevenue   float64 `json:"ingresosMes"`
	LastMonthRevenue      float64 `json:"ingresosMesAnterior"`
	MonthGrowth           float64 `json:"crecimientoMes"`
	CurrentQuarterRevenue float64 `json:"ingresosTrimestre"`
	QuarterGrowth         float64 `json:"crecimientoTrimestre"`

	TopTreatments []TreatmentSummary `json:"tratamientosTop"`
}

type TreatmentSummary struct {
	Name    string  `json:"nombretratamiento"`
	Count   int     `json:"cantidad"`
	Revenue float64 `json:"ingresos"`
}

func (s *ReportService) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	db := s.db.WithContext(ctx)
	var sum Summary

	var counts []struct {
		Status models.AppointmentStatus
		N      int64
	}
	if err := db.Model(&models.UserAppointment{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err != nil {
		return nil, utils.Internal("Error al contar citas", err)
	}
	for _, c := range counts {
		switch c.Status {
		case models.StatusPending:
			sum.Pending = c.N
		case models.StatusApproved:
			sum.Approved = c.N
		case models.StatusRejected:
			sum.Rejected = c.N
		}
	}

	today := models.Date(now.Format(models.DateLayout))
	if err := db.Table("user_appointments AS ua").
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Where("ua.status = ? AND a.requested_date >= ?", models.StatusApproved, today).
		Count(&sum.Upcoming).Error; err != nil {
		return nil, utils.Internal("Error al contar citas próximas", err)
	}

	firstOfMonth := utils.BeginningOfMonth(now)
	nextMonth := firstOfMonth.AddDate(0, 1, 0)

	if err := db.Model(&models.Invoice{}).
		Where("created_at >= ? AND created_at < ?", firstOfMonth, nextMonth).
		Count(&sum.InvoicesThisMonth).Error; err != nil {
		return nil, utils.Internal("Error al contar facturas", err)
	}

	var err error
	if sum.CurrentMonthRevenue, err = s.revenue(db, firstOfMonth, nextMonth); err != nil {
		return nil, err
	}
	if sum.LastMonthRevenue, err = s.revenue(db, firstOfMonth.AddDate(0, -1, 0), firstOfMonth); err != nil {
		return nil, err
	}
	sum.MonthGrowth = calculateGrowthPercentage(sum.CurrentMonthRevenue, sum.LastMonthRevenue)

	quarter := quarterStart(now)
	if sum.CurrentQuarterRevenue, err = s.revenue(db, quarter, quarter.AddDate(0, 3, 0)); err != nil {
		return nil, err
	}
	lastQuarterRevenue, err := s.revenue(db, quarter.AddDate(0, -3, 0), quarter)
	if err != nil {
		return nil, err
	}
	sum.QuarterGrowth = calculateGrowthPercentage(sum.CurrentQuarterRevenue, lastQuarterRevenue)

	sum.TopTreatments = []TreatmentSummary{}
	err = db.Table("invoices AS i").
		Select("t.name, COUNT(i.id) AS count, SUM(i.total) AS revenue").
		Joins("JOIN user_appointments ua ON ua.id = i.user_appointment_id").
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Where("i.created_at >= ? AND i.created_at < ?", firstOfMonth, nextMonth).
		Group("t.name").
		Order("revenue DESC").
		Limit(4).
		Scan(&sum.TopTreatments).Error
	if err != nil {
		return nil, utils.Internal("Error al obtener tratamientos más vendidos", err)
	}
	return &sum, nil
}

// revenue sums invoice totals in [start, end).
func (s *ReportService) revenue(db *gorm.DB, start, end time.Time) (float64, error) {
	var total float64
	err := db.Model(&models.Invoice{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, utils.Internal("Error al calcular ingresos", err)
	}
	return total, nil
}

func quarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}
