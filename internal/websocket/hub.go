package websocket

import (
	"encoding/json"

	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// CouponUpdate is pushed to subscribers whenever a coupon's score or
// counters change.
type CouponUpdate struct {
	CouponID        uint `json:"coupon_id"`
	SuccessScore    int  `json:"success_score"`
	ClickCount      int  `json:"click_count"`
	ConversionCount int  `json:"conversion_count"`
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans coupon updates out to connected clients. All client set
// mutation happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a hub. Call Run in its own goroutine before use.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits.
func (h *Hub) Run() {
	log := logger.Get()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Debug("Live client connected", map[string]interface{}{
				"clients": len(h.clients),
			})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastCouponUpdate pushes a coupon update to every connected client.
// Never blocks the caller.
func (h *Hub) BroadcastCouponUpdate(update CouponUpdate) {
	payload, err := json.Marshal(envelope{Type: "coupon_update", Data: update})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Get().Warn("Live broadcast queue full, dropping update", map[string]interface{}{
			"coupon_id": update.CouponID,
		})
	}
}
