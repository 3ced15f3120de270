package services

import (
	"context"
	"errors"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNoDelivery is returned by senders that cannot reach a phone.
var ErrNoDelivery = errors.New("no SMS provider configured")

type MessageSender interface {
	// Send delivers body to the phone number and returns the provider message id.
	Send(ctx context.Context, to, body string) (string, error)
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) Send(_ context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// ConsoleSender stands in for Twilio when no credentials are configured.
// It never delivers anything.
type ConsoleSender struct{}

func (ConsoleSender) Send(_ context.Context, to, _ string) (string, error) {
	log.Printf("[SMS] no provider configured, message to %s not delivered", to)
	return "", ErrNoDelivery
}
