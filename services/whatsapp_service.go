// services/whatsapp_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"telecare-backend/config"
	"telecare-backend/utils"

	"go.uber.org/zap"
)

// ErrMissingCredentials is fatal at startup: without PHONE_NUMBER_ID and
// WHATSAPP_TOKEN the process must refuse to start sending.
var ErrMissingCredentials = errors.New("PHONE_NUMBER_ID and WHATSAPP_TOKEN must be configured")

// TransportError is a network/timeout failure talking to the delivery
// gateway. Never retried by this layer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejectionError carries the gateway's structured rejection verbatim.
type RemoteRejectionError struct {
	HTTPStatus int
	Code       int
	Subcode    int
	Message    string
	Template   string
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("HTTP %d sending %q (code=%d, subcode=%d) %s",
		e.HTTPStatus, e.Template, e.Code, e.Subcode, e.Message)
}

// Button is one reply option on an interactive message.
type Button struct {
	ID    string
	Title string
}

// DeliveryGateway abstracts "send one message" to a recipient.
type DeliveryGateway interface {
	SendTemplate(template, to string, params []string, link string) error
	SendText(to, body string) error
	SendButtons(to, body string, buttons []Button) error
	Channel() string
}

// WhatsAppService sends templated and interactive messages through the
// WhatsApp Cloud API (graph.facebook.com).
type WhatsAppService struct {
	baseURL       string
	apiVersion    string
	phoneNumberID string
	token         string
	lang          string
	client        *http.Client
}

func NewWhatsAppService(cfg config.Config) (*WhatsAppService, error) {
	if cfg.PhoneNumberID == "" || cfg.WhatsAppToken == "" {
		return nil, ErrMissingCredentials
	}

	return &WhatsAppService{
		baseURL:       "https://graph.facebook.com",
		apiVersion:    cfg.WhatsAppAPIVersion,
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.WhatsAppToken,
		lang:          cfg.DefaultLang,
		client:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *WhatsAppService) Channel() string { return "whatsapp" }

func (s *WhatsAppService) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.apiVersion, s.phoneNumberID)
}

// SendTemplate sends an approved template. Params go into the body component
// in order; a non-empty link fills the template's dynamic URL button.
func (s *WhatsAppService) SendTemplate(template, to string, params []string, link string) error {
	parameters := make([]map[string]interface{}, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]interface{}{"type": "text", "text": p})
	}

	components := []map[string]interface{}{
		{"type": "body", "parameters": parameters},
	}
	if link != "" {
		components = append(components, map[string]interface{}{
			"type":     "button",
			"sub_type": "url",
			"index":    "0",
			"parameters": []map[string]interface{}{
				{"type": "text", "text": link},
			},
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       template,
			"language":   map[string]interface{}{"code": s.lang},
			"components": components,
		},
	}

	return s.post(payload, template)
}

func (s *WhatsAppService) SendText(to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]interface{}{"body": body},
	}
	return s.post(payload, "text")
}

func (s *WhatsAppService) SendButtons(to, body string, buttons []Button) error {
	replies := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]interface{}{"id": b.ID, "title": b.Title},
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]interface{}{"text": body},
			"action": map[string]interface{}{"buttons": replies},
		},
	}
	return s.post(payload, "interactive")
}

func (s *WhatsAppService) post(payload map[string]interface{}, template string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.messagesURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var rejection struct {
			Error struct {
				Code    int    `json:"code"`
				Subcode int    `json:"error_subcode"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &rejection); err != nil {
			utils.GetLogger().Warn("unparseable gateway error body",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", raw))
		}
		return &RemoteRejectionError{
			HTTPStatus: resp.StatusCode,
			Code:       rejection.Error.Code,
			Subcode:    rejection.Error.Subcode,
			Message:    rejection.Error.Message,
			Template:   template,
		}
	}

	return nil
}
