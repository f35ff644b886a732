package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stock-alert-backend/models"
	"stock-alert-backend/services/analysis"
)

// Streaming configuration
const (
	MaxStreamClients    = 100
	StreamWriteTimeout  = 10 * time.Second
	StreamPongTimeout   = 60 * time.Second
	StreamPingInterval  = 30 * time.Second
	DefaultPollInterval = 15 * time.Second
)

// StreamMessage is the envelope broadcast to every connected client
type StreamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time string      `json:"time"`
}

// QuoteUpdate pairs a live quote with its derived indicator bundle
type QuoteUpdate struct {
	models.EnhancedStock
	Indicators analysis.TechnicalIndicators `json:"indicators"`
}

// StreamClient is one connected dashboard
type StreamClient struct {
	conn       *websocket.Conn
	send       chan []byte
	subscribed map[string]bool
	mu         sync.RWMutex
}

// StreamService pushes quote and indicator updates to dashboards over
// WebSocket. Quotes come through the cached market service, indicators
// are derived once per poll cycle per symbol.
type StreamService struct {
	market *MarketService

	clients    map[*StreamClient]bool
	broadcast  chan StreamMessage
	register   chan *StreamClient
	unregister chan *StreamClient
	shutdown   chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader

	isPolling    bool
	pollInterval time.Duration
	stopChan     chan struct{}
}

// Global stream service
var GlobalStreamService *StreamService

// InitStreamService initializes the global stream service and starts its hub
func InitStreamService(market *MarketService) error {
	GlobalStreamService = &StreamService{
		market:     market,
		clients:    make(map[*StreamClient]bool),
		broadcast:  make(chan StreamMessage, 256),
		register:   make(chan *StreamClient),
		unregister: make(chan *StreamClient),
		shutdown:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		pollInterval: DefaultPollInterval,
		stopChan:     make(chan struct{}),
	}

	go GlobalStreamService.run()

	log.Println("Stream service initialized")
	return nil
}

// Shutdown stops polling and closes every client connection
func (s *StreamService) Shutdown() {
	s.StopPolling()
	close(s.shutdown)

	s.mu.Lock()
	for client := range s.clients {
		close(client.send)
		client.conn.Close()
	}
	s.clients = make(map[*StreamClient]bool)
	s.mu.Unlock()

	log.Println("Stream service shut down")
}

// run is the hub loop
func (s *StreamService) run() {
	for {
		select {
		case <-s.shutdown:
			return

		case client := <-s.register:
			s.mu.Lock()
			if len(s.clients) >= MaxStreamClients {
				s.mu.Unlock()
				client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Server at capacity"))
				client.conn.Close()
				log.Printf("Stream client rejected: max clients reached (%d)", MaxStreamClients)
				continue
			}
			s.clients[client] = true
			count := len(s.clients)
			s.mu.Unlock()
			log.Printf("Stream client connected. Total clients: %d", count)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			count := len(s.clients)
			s.mu.Unlock()
			log.Printf("Stream client disconnected. Total clients: %d", count)

		case message := <-s.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("Error marshaling stream message: %v", err)
				continue
			}

			s.mu.Lock()
			var dead []*StreamClient
			for client := range s.clients {
				payload := data
				if filtered, ok := client.filterQuotes(message); ok {
					payload = filtered
				}
				select {
				case client.send <- payload:
				default:
					dead = append(dead, client)
				}
			}
			for _, client := range dead {
				delete(s.clients, client)
				close(client.send)
			}
			s.mu.Unlock()
		}
	}
}

// HandleWebSocket upgrades an HTTP request into a stream client
func (s *StreamService) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	atCapacity := len(s.clients) >= MaxStreamClients
	s.mu.RUnlock()

	if atCapacity {
		http.Error(w, "Server at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &StreamClient{
		conn:       conn,
		send:       make(chan []byte, 256),
		subscribed: make(map[string]bool),
	}

	s.register <- client

	go client.writePump()
	go client.readPump(s)
}

// filterQuotes narrows a quote broadcast down to the client's subscribed
// symbols. Clients with no subscriptions receive the full feed.
func (c *StreamClient) filterQuotes(message StreamMessage) ([]byte, bool) {
	if message.Type != "quotes" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.subscribed) == 0 {
		return nil, false
	}

	updates, ok := message.Data.([]QuoteUpdate)
	if !ok {
		return nil, false
	}

	filtered := make([]QuoteUpdate, 0, len(c.subscribed))
	for _, u := range updates {
		if c.subscribed[u.Symbol] {
			filtered = append(filtered, u)
		}
	}

	data, err := json.Marshal(StreamMessage{
		Type: message.Type,
		Data: filtered,
		Time: message.Time,
	})
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *StreamClient) writePump() {
	ticker := time.NewTicker(StreamPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(StreamWriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(StreamWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *StreamClient) readPump(s *StreamService) {
	defer func() {
		s.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(StreamPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(StreamPongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var cmd struct {
			Action  string   `json:"action"`
			Symbols []string `json:"symbols"`
		}
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.mu.Lock()
			for _, sym := range cmd.Symbols {
				c.subscribed[strings.ToUpper(sym)] = true
			}
			c.mu.Unlock()
		case "unsubscribe":
			c.mu.Lock()
			for _, sym := range cmd.Symbols {
				delete(c.subscribed, strings.ToUpper(sym))
			}
			c.mu.Unlock()
		}
	}
}

// StartPolling begins the quote poll/broadcast loop
func (s *StreamService) StartPolling() error {
	s.mu.Lock()
	if s.isPolling {
		s.mu.Unlock()
		return fmt.Errorf("polling already running")
	}
	s.isPolling = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go s.pollQuotes()

	log.Printf("Started quote polling (interval: %v)", s.pollInterval)
	return nil
}

// StopPolling halts the poll loop
func (s *StreamService) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isPolling {
		return
	}
	close(s.stopChan)
	s.isPolling = false
	log.Println("Quote polling stopped")
}

func (s *StreamService) pollQuotes() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.fetchAndBroadcast()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.fetchAndBroadcast()
		}
	}
}

// fetchAndBroadcast reads quotes through the cache and pushes one update
// message with indicators derived per symbol
func (s *StreamService) fetchAndBroadcast() {
	stocks, err := s.market.GetAllStocks()
	if err != nil {
		log.Printf("Quote poll failed: %v", err)
		return
	}

	updates := make([]QuoteUpdate, 0, len(stocks))
	for _, stock := range stocks {
		updates = append(updates, QuoteUpdate{
			EnhancedStock: stock,
			Indicators:    analysis.ComputeIndicators(stock.CurrentPrice, float64(stock.Volume)),
		})
	}

	if len(updates) > 0 {
		s.broadcast <- StreamMessage{
			Type: "quotes",
			Data: updates,
			Time: time.Now().Format(time.RFC3339),
		}
	}
}

// BroadcastMessage pushes a custom message to all clients
func (s *StreamService) BroadcastMessage(msgType string, data interface{}) {
	s.broadcast <- StreamMessage{
		Type: msgType,
		Data: data,
		Time: time.Now().Format(time.RFC3339),
	}
}

// GetClientCount returns the number of connected clients
func (s *StreamService) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// IsPolling reports whether the poll loop is active
func (s *StreamService) IsPolling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPolling
}

// Status returns service status info for the admin endpoint
func (s *StreamService) Status() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"is_polling":        s.isPolling,
		"client_count":      len(s.clients),
		"max_clients":       MaxStreamClients,
		"poll_interval_sec": int(s.pollInterval.Seconds()),
	}
}
