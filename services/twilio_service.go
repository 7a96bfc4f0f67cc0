// services/twilio_service.go
package services

import (
	"fmt"
	"strings"

	"telecare-backend/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrMissingTwilioCredentials mirrors ErrMissingCredentials for the Twilio channel.
var ErrMissingTwilioCredentials = fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be configured")

// TwilioService is the alternate delivery gateway for deployments without
// WhatsApp Cloud API access. Templates are rendered to plain text and sent
// via Twilio, over WhatsApp when a WhatsApp sender number is configured.
type TwilioService struct {
	client         *twilio.RestClient
	whatsappNumber string
	phoneNumber    string
}

func NewTwilioService(cfg config.Config) (*TwilioService, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, ErrMissingTwilioCredentials
	}

	return &TwilioService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		whatsappNumber: cfg.TwilioWhatsAppNumber,
		phoneNumber:    cfg.TwilioPhoneNumber,
	}, nil
}

func (s *TwilioService) Channel() string { return "twilio" }

// RenderTemplate expands a template name and its ordered parameters into the
// plain-text body used on the Twilio channel.
func RenderTemplate(template string, params []string, link string) string {
	get := func(i int) string {
		if i < len(params) {
			return params[i]
		}
		return ""
	}

	var body string
	switch template {
	case TemplateReminder48h:
		body = fmt.Sprintf("Olá %s! Lembrete: sua teleconsulta será em %s às %s.", get(0), get(1), get(2))
	case TemplateReminder24h:
		body = fmt.Sprintf("Olá %s! Sua teleconsulta é amanhã, %s às %s.", get(0), get(1), get(2))
	case TemplateReminder1h:
		body = fmt.Sprintf("Olá %s! Sua teleconsulta começa em 1 hora, às %s.", get(0), get(1))
	case TemplateConsultationStarting:
		body = fmt.Sprintf("Olá %s! Sua teleconsulta está começando (%s).", get(0), get(1))
	default:
		body = strings.Join(params, " | ")
	}

	if link != "" {
		body += " Acesse: " + link
	}
	return body
}

func (s *TwilioService) SendTemplate(template, to string, params []string, link string) error {
	return s.SendText(to, RenderTemplate(template, params, link))
}

func (s *TwilioService) SendText(to, body string) error {
	msgParams := &twilioApi.CreateMessageParams{}
	msgParams.SetBody(body)

	if s.whatsappNumber != "" {
		msgParams.SetTo("whatsapp:+" + to)
		msgParams.SetFrom("whatsapp:" + s.whatsappNumber)
	} else {
		msgParams.SetTo("+" + to)
		msgParams.SetFrom(s.phoneNumber)
	}

	if _, err := s.client.Api.CreateMessage(msgParams); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// SendButtons degrades to a text listing of the reply commands, since plain
// SMS has no interactive buttons.
func (s *TwilioService) SendButtons(to, body string, buttons []Button) error {
	titles := make([]string, 0, len(buttons))
	for _, b := range buttons {
		titles = append(titles, b.Title)
	}
	return s.SendText(to, body+" Responda: "+strings.Join(titles, " ou "))
}
