package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/pkg/contracts/events"
)

// Prazo de cada escrita; cliente lento não segura o broadcast
const writeTimeout = 2 * time.Second

// client serializa as escritas numa conexão (gorilla não aceita escrita concorrente)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *client) writeRaw(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas do feed de cálculos
// subs: mapeia tópico (hole cards ou "*") para o conjunto de clientes inscritos
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// topic normaliza as hole cards para a notação canônica, então "h1 hk",
// "hA hK" e "hK hA" caem no mesmo tópico
func topic(holeCards string) (string, error) {
	cs, err := cards.ParseCards(holeCards)
	if err != nil {
		return "", err
	}
	if len(cs) != 2 {
		return "", &calc.MalformedHoleCardsError{Input: holeCards, Count: len(cs)}
	}
	return cards.Notation(cards.Canonical(cs)), nil
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe", "unsubscribe":
			t := TopicAll
			if msg.HoleCards != "" && msg.HoleCards != TopicAll {
				if t, err = topic(msg.HoleCards); err != nil {
					_ = c.writeJSON(map[string]string{"type": "error", "error": err.Error()})
					continue
				}
			}
			if msg.Type == "subscribe" {
				h.subscribe(t, c)
			} else {
				h.unsubscribe(t, c)
			}
			_ = c.writeJSON(map[string]string{"type": msg.Type + "d", "topic": t})
		case "ping":
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.remove(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for t, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, t)
		}
	}
}

func (h *Hub) subscribe(t string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[t]; !ok {
		h.subs[t] = make(map[*client]struct{})
	}
	h.subs[t][c] = struct{}{}
}

func (h *Hub) unsubscribe(t string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[t]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, t)
		}
	}
}

// Broadcast envia o cálculo para os inscritos em "*" e nas hole cards dele.
// Cliente cuja escrita falha (ou estoura o prazo) é removido e desconectado.
func (h *Hub) Broadcast(e events.OddsCalculated) {
	hole := e.HoleCards
	if t, err := topic(hole); err == nil {
		hole = t
	}

	h.mu.RLock()
	targets := make(map[*client]struct{})
	for _, t := range []string{TopicAll, hole} {
		for c := range h.subs[t] {
			targets[c] = struct{}{}
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(CalculationUpdate{Type: "calculation", Payload: e})
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	for c := range targets {
		if err := c.writeRaw(b); err != nil {
			h.log.Debug("ws write failed, dropping client", zap.Error(err))
			h.remove(c)
			_ = c.conn.Close()
		}
	}
}
