package services

import (
	"errors"
	"sync"

	"telecare-backend/models"
)

var errTestNetwork = errors.New("connection refused")

// fakeSend records one outbound message seen by the fake gateway.
type fakeSend struct {
	kind     string // "template", "text", "buttons"
	template string
	to       string
	params   []string
	link     string
	body     string
	buttons  []Button
}

type fakeGateway struct {
	mu      sync.Mutex
	sends   []fakeSend
	failFor map[string]error
	panicOn string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failFor: make(map[string]error)}
}

func (g *fakeGateway) Channel() string { return "fake" }

func (g *fakeGateway) SendTemplate(template, to string, params []string, link string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if to == g.panicOn && g.panicOn != "" {
		panic("gateway exploded")
	}
	g.sends = append(g.sends, fakeSend{
		kind: "template", template: template, to: to, params: params, link: link,
	})
	return g.failFor[to]
}

func (g *fakeGateway) SendText(to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, fakeSend{kind: "text", to: to, body: body})
	return g.failFor[to]
}

func (g *fakeGateway) SendButtons(to, body string, buttons []Button) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, fakeSend{kind: "buttons", to: to, body: body, buttons: buttons})
	return g.failFor[to]
}

func (g *fakeGateway) recorded() []fakeSend {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]fakeSend, len(g.sends))
	copy(out, g.sends)
	return out
}

// fakeRecorder collects delivery log rows without a database.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []models.ReminderLog
}

func (r *fakeRecorder) Record(entry models.ReminderLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *fakeRecorder) recorded() []models.ReminderLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ReminderLog, len(r.entries))
	copy(out, r.entries)
	return out
}
