// controllers/invoice.go
package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

type InvoiceController struct {
	Invoices *services.InvoiceService
}

// GenerateInvoiceInput defines the expected JSON structure for invoicing a booking
type GenerateInvoiceInput struct {
	UserAppointmentID uint `json:"idusuariocita"`
	CurrencyID        uint `json:"idmoneda"`
}

// Generate bills an approved booking once.
func (ic *InvoiceController) Generate(c *gin.Context) {
	var input GenerateInvoiceInput
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := ic.Invoices.Generate(c.Request.Context(), input.UserAppointmentID, input.CurrencyID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Factura generada exitosamente", invoice)
}

func (ic *InvoiceController) Get(c *gin.Context) {
	id, ok := pathID(c, "idFactura")
	if !ok {
		return
	}
	doc, err := ic.Invoices.Document(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Factura", doc)
}

// PDF renders the invoice as a downloadable document.
func (ic *InvoiceController) PDF(c *gin.Context) {
	id, ok := pathID(c, "idFactura")
	if !ok {
		return
	}
	doc, err := ic.Invoices.Document(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderPDF(&buf, doc); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Error al generar el PDF", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="factura-%d.pdf"`, doc.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
