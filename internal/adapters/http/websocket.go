package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/tripcost/internal/adapters/nats"
	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/metrics"
)

// wsMessage is sent from client to narrow the feed.
type wsMessage struct {
	Action     string `json:"action"`      // "filter" | "ping"
	BestChoice string `json:"best_choice"` // "", "pricingPerMinute" or "pricingPerKilometer"
}

// WebSocketHandler relays every computed estimate published on NATS to the
// connected client. Clients may send {"action":"filter","best_choice":"pricingPerMinute"}
// to only receive estimates won by one scheme; an empty best_choice clears the filter.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var (
			mu     sync.Mutex
			filter domain.Scheme
		)

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := nc.Subscribe(natsadapter.SubjectEstimatesAll, func(msg *nats.Msg) {
			mu.Lock()
			want := filter
			mu.Unlock()
			if want != "" {
				var head struct {
					BestChoice domain.Scheme `json:"best_choice"`
				}
				if json.Unmarshal(msg.Data, &head) != nil || head.BestChoice != want {
					return
				}
			}
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Error("ws subscribe", "subject", natsadapter.SubjectEstimatesAll, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "filter":
				scheme := domain.Scheme(m.BestChoice)
				if scheme != "" && scheme != domain.SchemePerMinute && scheme != domain.SchemePerKilometer {
					_ = writeJSON(map[string]string{"error": "unknown best_choice: " + m.BestChoice})
					continue
				}
				mu.Lock()
				filter = scheme
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "filtered", "best_choice": m.BestChoice})
			case "ping":
				_ = writeJSON(map[string]string{"status": "pong"})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
