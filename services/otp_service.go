package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"salon-backend/utils"
)

const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

type OTPService struct {
	store   CodeStore
	sender  MessageSender
	ttl     time.Duration
	devMode bool
}

// NewOTPService builds the one-time code flow. In devMode a code that could
// not be delivered is returned to the caller instead of failing the request.
func NewOTPService(store CodeStore, sender MessageSender, ttl time.Duration, devMode bool) *OTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPService{store: store, sender: sender, ttl: ttl, devMode: devMode}
}

type OTPDelivery struct {
	Sent      bool   `json:"enviado"`
	SID       string `json:"sid,omitempty"`
	DevMode   bool   `json:"devMode,omitempty"`
	Code      string `json:"otp,omitempty"`
	ExpiresIn int    `json:"expiraEnSegundos"`
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func otpKey(purpose, phone string) string {
	return purpose + ":" + phone
}

// Issue stores a fresh code for phone, replacing any previous one, and sends it.
func (s *OTPService) Issue(ctx context.Context, purpose, phone string) (*OTPDelivery, error) {
	phone = utils.CleanPhone(phone)
	if !utils.ValidatePhone(phone) {
		return nil, utils.Validation("Número de teléfono inválido")
	}
	code, err := generateCode()
	if err != nil {
		return nil, utils.Internal("Error al generar el código", err)
	}
	if err := s.store.Save(ctx, otpKey(purpose, phone), code, s.ttl); err != nil {
		return nil, utils.Internal("Error al guardar el código", err)
	}

	body := fmt.Sprintf("Tu código de verificación es: %s. Válido por %d minutos.", code, int(s.ttl.Minutes()))
	delivery := &OTPDelivery{ExpiresIn: int(s.ttl.Seconds())}
	sid, err := s.sender.Send(ctx, phone, body)
	if err != nil {
		if !s.devMode {
			return nil, utils.Internal("No se pudo enviar el código", err)
		}
		log.Printf("[OTP] delivery to %s failed, returning code in response: %v", phone, err)
		delivery.DevMode = true
		delivery.Code = code
		return delivery, nil
	}
	delivery.Sent = true
	delivery.SID = sid
	return delivery, nil
}

// Verify consumes the code issued to phone for purpose.
func (s *OTPService) Verify(ctx context.Context, purpose, phone, code string) error {
	if phone == "" || code == "" {
		return utils.Validation("Teléfono y código son obligatorios")
	}
	ok, err := s.store.Consume(ctx, otpKey(purpose, utils.CleanPhone(phone)), code)
	if err != nil {
		return utils.Internal("Error al verificar el código", err)
	}
	if !ok {
		return utils.Validation("Código inválido o expirado")
	}
	return nil
}

// PurgeExpired is run by the scheduler.
func (s *OTPService) PurgeExpired(ctx context.Context) {
	n, err := s.store.PurgeExpired(ctx)
	if err != nil {
		log.Printf("[OTP] purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[OTP] purged %d expired codes", n)
	}
}
