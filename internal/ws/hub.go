package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ShiftBot/entity"
)

// Event is one live-feed frame sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "report_submitted"
	Data interface{} `json:"data"`
}

// reportEvent is the payload for a report_submitted frame.
type reportEvent struct {
	Author       string  `json:"author"`
	Date         string  `json:"date"`
	Wolt         float64 `json:"wolt"`
	Bolt         float64 `json:"bolt"`
	Yandex       float64 `json:"yandex"`
	Temp         float64 `json:"temp"`
	WeatherLabel string  `json:"weather_label"`
	Overwrite    bool    `json:"overwrite"`
	SubmittedAt  string  `json:"submitted_at"`
}

// Hub maintains the set of active WebSocket clients and broadcasts report
// events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ReportSubmitted feeds an accepted report into the broadcast loop. It is the
// dialog engine's report listener.
func (h *Hub) ReportSubmitted(user entity.User, rec entity.ReportRecord, overwrite bool) {
	h.broadcast <- &Event{
		Type: "report_submitted",
		Data: reportEvent{
			Author:       user.Label(),
			Date:         rec.Date,
			Wolt:         rec.Wolt,
			Bolt:         rec.Bolt,
			Yandex:       rec.Yandex,
			Temp:         rec.Temp,
			WeatherLabel: rec.WeatherLabel,
			Overwrite:    overwrite,
			SubmittedAt:  time.Now().UTC().Format(time.RFC3339),
		},
	}
}
