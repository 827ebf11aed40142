package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lamnochka-debug/vocab-services/internal/comm"
	"github.com/lamnochka-debug/vocab-services/internal/websvc/broker"
	log "github.com/sirupsen/logrus"
)

// chat events a web client is allowed to send to the vocab service
var allowedEvents = map[string]bool{
	"add":        true,
	"list":       true,
	"due":        true,
	"quiz-start": true,
	"reveal":     true,
	"grade":      true,
	"export":     true,
}

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage forwards a chat event from a web client to the vocab service.
func (s *Ws) SocketMessage(socketId string, message *comm.ChatMessage) {
	if !allowedEvents[message.Type] {
		log.Warnf("unknown event received: %s", message.Type)
		return
	}

	// Ensure the payload carries the owning user
	var payload struct {
		UserId int64 `json:"user_id"`
	}
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		log.Errorf("Error: malformed %s payload %s", message.Type, err)
		return
	}
	if payload.UserId == 0 {
		log.Errorf("Invalid %s payload: missing user id", message.Type)
		return
	}

	// Update message with socket ID so responses find their way back
	message.SocketId = socketId

	bytes, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal ChatMessage for NATS: %v", err)
		return
	}

	topic := "vocab.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Infof("Published %s event for user %d to topic %s", message.Type, payload.UserId, topic)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
