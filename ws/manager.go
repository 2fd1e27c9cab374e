package ws

import (
	"context"
	"sync"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
)

// Event - то, что получает клиент: {"type": "notification", "data": {...}}
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WebSocketManager держит подключения по пользователям. У одного
// пользователя может быть несколько вкладок.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию до отмены ctx, затем отключает всех
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case client := <-manager.register:
			manager.add(client)

		case client := <-manager.unregister:
			manager.remove(client)

		case <-ctx.Done():
			manager.shutdown()
			return
		}
	}
}

func (manager *WebSocketManager) add(client *Client) {
	manager.mu.Lock()
	set, ok := manager.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		manager.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	connections := len(set)
	manager.mu.Unlock()

	metrics.WSConnected()
	logger.Debug("ws client registered", "user_id", client.UserID, "connections", connections)
}

// remove закрывает Send ровно один раз: клиент сначала убирается из карты
func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	close(client.Send)

	metrics.WSDisconnected()
	logger.Debug("ws client unregistered", "user_id", client.UserID)
}

func (manager *WebSocketManager) shutdown() {
	manager.mu.Lock()
	for userID, set := range manager.clients {
		for client := range set {
			close(client.Send)
			metrics.WSDisconnected()
		}
		delete(manager.clients, userID)
	}
	manager.mu.Unlock()
	close(manager.done)
	logger.Info("ws manager stopped")
}

// Register / Unregister не блокируются после остановки менеджера
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

// Publish отправляет событие всем подключениям пользователя. Не блокируется:
// клиент с заполненным буфером отключается.
func (manager *WebSocketManager) Publish(userID, eventType string, data any) {
	event := Event{Type: eventType, Data: data}

	var slow []*Client
	manager.mu.RLock()
	for client := range manager.clients[userID] {
		select {
		case client.Send <- event:
		default:
			slow = append(slow, client)
		}
	}
	manager.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("ws client dropped: send buffer full", "user_id", userID)
		manager.remove(client)
	}
}

// GetClientCount - число подключений пользователя
func (manager *WebSocketManager) GetClientCount(userID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID])
}

func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	return manager.GetClientCount(userID) > 0
}
