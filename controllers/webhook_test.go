package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"telecare-backend/config"
	"telecare-backend/services"

	"github.com/gin-gonic/gin"
)

var errReactorDown = errors.New("reactor unavailable")

type recordingReactor struct {
	events []services.InboundEvent
	err    error
}

func (r *recordingReactor) HandleEvent(event services.InboundEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func webhookRouter(t *testing.T, reactor services.EventHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.WebhookVerifyToken = "test-verify-token"
	Reactor = reactor

	r := gin.New()
	r.GET("/webhook", VerifyWebhook)
	r.POST("/webhook", ReceiveWebhook)
	return r
}

func TestVerifyWebhookHandshake(t *testing.T) {
	router := webhookRouter(t, &recordingReactor{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "hub.mode=subscribe&hub.verify_token=test-verify-token&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=test-verify-token&hub.challenge=12345", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tt.query, nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReceiveWebhookTextMessage(t *testing.T) {
	reactor := &recordingReactor{}
	router := webhookRouter(t, reactor)

	body := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "5511988880000",
						"text": {"body": "PAUSAR"}
					}]
				}
			}]
		}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(reactor.events) != 1 {
		t.Fatalf("reactor received %d events, want 1", len(reactor.events))
	}
	event := reactor.events[0]
	if event.Sender != "5511988880000" {
		t.Errorf("sender = %q", event.Sender)
	}
	if event.Kind != services.EventText {
		t.Errorf("kind = %q, want %q", event.Kind, services.EventText)
	}
	if event.Payload != "PAUSAR" {
		t.Errorf("payload = %q, want PAUSAR", event.Payload)
	}
}

func TestReceiveWebhookButtonReply(t *testing.T) {
	reactor := &recordingReactor{}
	router := webhookRouter(t, reactor)

	body := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "5511988880000",
						"interactive": {
							"type": "button_reply",
							"button_reply": {"id": "confirmar", "title": "Confirmar"}
						}
					}]
				}
			}]
		}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(reactor.events) != 1 {
		t.Fatalf("reactor received %d events, want 1", len(reactor.events))
	}
	event := reactor.events[0]
	if event.Kind != services.EventButton {
		t.Errorf("kind = %q, want %q", event.Kind, services.EventButton)
	}
	if event.Payload != "confirmar" {
		t.Errorf("payload = %q, want confirmar", event.Payload)
	}
}

func TestReceiveWebhookIgnoresStatuses(t *testing.T) {
	reactor := &recordingReactor{}
	router := webhookRouter(t, reactor)

	body := `{
		"entry": [{
			"changes": [{
				"value": {
					"statuses": [{
						"id": "wamid.xyz",
						"status": "delivered",
						"recipient_id": "5511988880000"
					}]
				}
			}]
		}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(reactor.events) != 0 {
		t.Errorf("reactor received %d events, want 0", len(reactor.events))
	}
}

func TestReceiveWebhookAlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name    string
		reactor *recordingReactor
		body    string
	}{
		{"malformed json", &recordingReactor{}, `{"entry": [`},
		{"empty payload", &recordingReactor{}, `{}`},
		{
			"reactor failure",
			&recordingReactor{err: errReactorDown},
			`{"entry":[{"changes":[{"value":{"messages":[{"from":"5511988880000","text":{"body":"oi"}}]}}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := webhookRouter(t, tt.reactor)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
		})
	}
}
