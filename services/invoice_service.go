package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"salon-backend/models"
	"salon-backend/mq"
	"salon-backend/utils"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"
)

type InvoiceService struct {
	db     *gorm.DB
	events mq.Publisher
}

func NewInvoiceService(db *gorm.DB, events mq.Publisher) *InvoiceService {
	return &InvoiceService{db: db, events: orNop(events)}
}

type billableAppointment struct {
	ID     uint
	Status models.AppointmentStatus
	Price  float64
}

// Generate bills an approved booking with the current price of its treatment.
// The unique index on invoices.user_appointment_id is the final guard against
// double billing: a concurrent duplicate surfaces as the same conflict the
// pre-check reports.
func (s *InvoiceService) Generate(ctx context.Context, userAppointmentID, currencyID uint) (*models.Invoice, error) {
	if userAppointmentID == 0 || currencyID == 0 {
		return nil, utils.Validation("idusuariocita e idmoneda son requeridos")
	}
	db := s.db.WithContext(ctx)

	var appt billableAppointment
	err := db.Table("user_appointments AS ua").
		Select("ua.id, ua.status, t.price").
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Where("ua.id = ?", userAppointmentID).
		Take(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Cita no encontrada")
		}
		return nil, utils.Internal("Error al buscar la cita", err)
	}
	if appt.Status != models.StatusApproved {
		return nil, utils.Conflict("Solo se pueden facturar citas aprobadas")
	}

	if existing, err := s.findByAppointment(db, userAppointmentID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, alreadyInvoiced(existing.ID)
	}

	if err := mustExist(db, &models.Currency{}, currencyID, "Moneda no encontrada"); err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		UserAppointmentID: userAppointmentID,
		CurrencyID:        currencyID,
		Total:             appt.Price,
	}
	if err := db.Create(&invoice).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			existing, findErr := s.findByAppointment(db, userAppointmentID)
			if findErr == nil && existing != nil {
				return nil, alreadyInvoiced(existing.ID)
			}
			return nil, utils.Conflict("La cita ya tiene una factura generada")
		}
		return nil, utils.Internal("Error al generar la factura", err)
	}

	publish(ctx, s.events, mq.InvoiceGenerated, invoice)
	return &invoice, nil
}

func alreadyInvoiced(invoiceID uint) *utils.AppError {
	return utils.Conflict("La cita ya tiene una factura generada").With("idfacturacita", invoiceID)
}

func (s *InvoiceService) findByAppointment(db *gorm.DB, userAppointmentID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := db.Where("user_appointment_id = ?", userAppointmentID).Take(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Internal("Error al buscar facturas", err)
	}
	return &invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Take(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Factura no encontrada")
		}
		return nil, utils.Internal("Error al buscar la factura", err)
	}
	return &invoice, nil
}

// Document loads an invoice with the customer, treatment and currency it refers to.
func (s *InvoiceService) Document(ctx context.Context, invoiceID uint) (*models.InvoiceDocument, error) {
	var doc models.InvoiceDocument
	err := s.db.WithContext(ctx).
		Table("invoices AS i").
		Select(`i.id, i.user_appointment_id, i.currency_id, i.total, i.created_at,
			m.name AS currency_name, m.symbol AS currency_symbol,
			t.name AS treatment_name, a.requested_date, a.requested_time,
			u.first_name, u.last_name, u.phone`).
		Joins("JOIN currencies m ON m.id = i.currency_id").
		Joins("JOIN user_appointments ua ON ua.id = i.user_appointment_id").
		Joins("JOIN appointments a ON a.id = ua.appointment_id").
		Joins("JOIN treatments t ON t.id = a.treatment_id").
		Joins("JOIN users u ON u.id = ua.user_id").
		Where("i.id = ?", invoiceID).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Factura no encontrada")
		}
		return nil, utils.Internal("Error al buscar la factura", err)
	}
	return &doc, nil
}

// RenderPDF writes a one page A4 invoice.
func RenderPDF(w io.Writer, doc *models.InvoiceDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Factura #%d", doc.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Fecha de emisión: "+doc.CreatedAt.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Cliente", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(doc.FirstName+" "+doc.LastName), "", 1, "L", false, 0, "")
	if doc.Phone != "" {
		pdf.CellFormat(0, 6, tr("Teléfono: "+doc.Phone), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Tratamiento", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Fecha", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 8, "Monto", "1", 1, "R", true, 0, "")

	amount := fmt.Sprintf("%.2f %s", doc.Total, doc.CurrencyName)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 8, tr(doc.TreatmentName), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%s %s", doc.RequestedDate, doc.RequestedTime), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, tr(amount), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 10, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, tr(amount), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
