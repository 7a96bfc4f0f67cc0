// services/optout_service.go
package services

import (
	"strings"
	"sync"

	"telecare-backend/utils"

	"go.uber.org/zap"
)

const (
	CommandPause  = "PAUSAR"
	CommandResume = "RETORNAR"

	ButtonConfirmOptOut = "confirmar"
	ButtonConfirmOptIn  = "ativar"
)

const (
	EventText   = "text"
	EventButton = "button"
)

// InboundEvent is a normalized webhook message: either a text body or a
// pressed button id.
type InboundEvent struct {
	Sender  string
	Kind    string
	Payload string
}

// EventHandler consumes normalized inbound events.
type EventHandler interface {
	HandleEvent(ev InboundEvent) error
}

type conversationState int

const (
	stateAwaitingCommand conversationState = iota
	stateAwaitingOptOutConfirm
	stateAwaitingOptInConfirm
)

// OptOutService drives the PAUSAR/RETORNAR conversation per sender phone.
// The conversation state is ephemeral; only the consent mutation is durable.
type OptOutService struct {
	gateway DeliveryGateway
	consent ConsentStore

	mu     sync.Mutex
	states map[string]conversationState
}

func NewOptOutService(gateway DeliveryGateway, consent ConsentStore) *OptOutService {
	return &OptOutService{
		gateway: gateway,
		consent: consent,
		states:  make(map[string]conversationState),
	}
}

func (s *OptOutService) state(phone string) conversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[phone]
}

func (s *OptOutService) setState(phone string, st conversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == stateAwaitingCommand {
		delete(s.states, phone)
		return
	}
	s.states[phone] = st
}

func (s *OptOutService) HandleEvent(ev InboundEvent) error {
	switch ev.Kind {
	case EventText:
		return s.handleText(ev.Sender, ev.Payload)
	case EventButton:
		return s.handleButton(ev.Sender, ev.Payload)
	default:
		utils.GetLogger().Warn("unknown inbound event kind",
			zap.String("sender", ev.Sender),
			zap.String("kind", ev.Kind),
		)
		return nil
	}
}

func (s *OptOutService) handleText(sender, body string) error {
	command := strings.ToUpper(strings.TrimSpace(body))

	switch command {
	case CommandPause:
		s.setState(sender, stateAwaitingOptOutConfirm)
		utils.GetLogger().Info("opt-out requested, sending confirmation prompt",
			zap.String("sender", sender))
		return s.gateway.SendButtons(sender,
			"Você pediu para parar de receber os lembretes. Confirme abaixo:",
			[]Button{{ID: ButtonConfirmOptOut, Title: "CONFIRMAR"}},
		)

	case CommandResume:
		s.setState(sender, stateAwaitingOptInConfirm)
		utils.GetLogger().Info("opt-in requested, sending confirmation prompt",
			zap.String("sender", sender))
		return s.gateway.SendButtons(sender,
			"Deseja voltar a receber os lembretes? Clique abaixo:",
			[]Button{{ID: ButtonConfirmOptIn, Title: "ATIVAR"}},
		)

	default:
		// Unknown text leaves the conversation state untouched.
		return s.gateway.SendText(sender,
			"Comandos: PAUSAR (parar de receber) • RETORNAR (voltar a receber)")
	}
}

func (s *OptOutService) handleButton(sender, buttonID string) error {
	state := s.state(sender)

	switch {
	case buttonID == ButtonConfirmOptOut && state == stateAwaitingOptOutConfirm:
		if err := s.consent.SetActive(sender, false); err != nil {
			return err
		}
		s.setState(sender, stateAwaitingCommand)
		utils.GetLogger().Info("guardian opted out", zap.String("sender", sender))
		return s.gateway.SendText(sender, "✅ Você parou de receber os lembretes.")

	case buttonID == ButtonConfirmOptIn && state == stateAwaitingOptInConfirm:
		if err := s.consent.SetActive(sender, true); err != nil {
			return err
		}
		s.setState(sender, stateAwaitingCommand)
		utils.GetLogger().Info("guardian opted back in", zap.String("sender", sender))
		return s.gateway.SendText(sender, "✅ Você voltou a receber os lembretes.")

	default:
		utils.GetLogger().Warn("button reply without matching prompt, ignored",
			zap.String("sender", sender),
			zap.String("button", buttonID),
		)
		return nil
	}
}
