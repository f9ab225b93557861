package delivery

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers presentation messages as SMS through the Twilio
// REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender creates a sender. Returns ErrNotConfigured when any
// credential is missing so callers can fall back to a no-op sender.
func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, ErrNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}, nil
}

// Send implements Sender.
func (s *TwilioSender) Send(ctx context.Context, phone, body string) (Receipt, error) {
	if phone == "" {
		return Receipt{Error: ErrMissingPhone.Error()}, ErrMissingPhone
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return Receipt{Error: err.Error()}, fmt.Errorf("delivery: twilio send: %w", err)
	}

	receipt := Receipt{Success: true}
	if msg.Sid != nil {
		receipt.MessageID = *msg.Sid
	}
	return receipt, nil
}
