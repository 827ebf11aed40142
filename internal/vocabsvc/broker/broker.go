package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/comm"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/service"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// topic the transport services (botsvc, websvc) listen on
const chatTopic = "chat.service"

type Broker struct {
	Conn           *nats.Conn
	CardService    *service.CardService
	SessionService *service.SessionService
	ExportService  *service.ExportService
}

func NewBroker(nc *nats.Conn, cardService *service.CardService,
	sessionService *service.SessionService, exportService *service.ExportService) *Broker {
	return &Broker{
		Conn:           nc,
		CardService:    cardService,
		SessionService: sessionService,
		ExportService:  exportService,
	}
}

// SubscribeChatEvents consumes chat events published by the transports.
func (b *Broker) SubscribeChatEvents(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.ChatMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch msg.Type {
	case "add":
		b.handleAdd(ctx, msg)
	case "list":
		b.handleList(ctx, msg)
	case "due":
		b.handleDue(ctx, msg)
	case "quiz-start":
		b.handleQuizStart(ctx, msg)
	case "reveal":
		b.handleReveal(msg)
	case "grade":
		b.handleGrade(ctx, msg)
	case "export":
		b.handleExport(ctx, msg)
	default:
		log.Warnf("unknown message type: %s", msg.Type)
	}
}

func (b *Broker) handleAdd(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.AddCardRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid AddCardRequest: %s", err)
		return
	}

	card, err := b.CardService.AddCard(ctx, req.UserId, req.Term, req.Translation)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			b.publish("add-response", comm.AddCardRes{Status: "invalid"}, msg.SocketId)
			return
		}
		log.Errorf("Error [CardService.AddCard] %s", err)
		b.publishError(msg.SocketId)
		return
	}

	b.publish("add-response", comm.AddCardRes{
		Status:      "ok",
		CardId:      card.ID,
		Term:        card.Term,
		Translation: card.Translation,
	}, msg.SocketId)
}

func (b *Broker) handleList(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.ListCardsRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid ListCardsRequest: %s", err)
		return
	}

	cards, err := b.CardService.ListRecent(ctx, req.UserId)
	if err != nil {
		log.Errorf("Error [CardService.ListRecent] %s", err)
		b.publishError(msg.SocketId)
		return
	}

	res := comm.ListCardsRes{Status: "ok"}
	for _, c := range cards {
		res.Cards = append(res.Cards, comm.CardItem{
			CardId:      c.ID,
			Term:        c.Term,
			Translation: c.Translation,
			NextReview:  c.NextReview.UTC().Format("2006-01-02"),
		})
	}

	b.publish("list-response", res, msg.SocketId)
}

func (b *Broker) handleDue(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.DueCountRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid DueCountRequest: %s", err)
		return
	}

	count, err := b.CardService.DueCount(ctx, req.UserId)
	if err != nil {
		log.Errorf("Error [CardService.DueCount] %s", err)
		b.publishError(msg.SocketId)
		return
	}

	b.publish("due-response", comm.DueCountRes{Status: "ok", Count: count}, msg.SocketId)
}

func (b *Broker) handleQuizStart(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.QuizStartRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid QuizStartRequest: %s", err)
		return
	}

	card, remaining, err := b.SessionService.Start(ctx, req.UserId)
	if err != nil {
		log.Errorf("Error [SessionService.Start] %s", err)
		b.publishError(msg.SocketId)
		return
	}
	if card == nil {
		b.publish("quiz-card", comm.QuizCardRes{Status: "empty"}, msg.SocketId)
		return
	}

	b.publish("quiz-card", presenting(card, remaining), msg.SocketId)
}

func (b *Broker) handleReveal(msg *comm.ChatMessage) {
	var req comm.RevealRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid RevealRequest: %s", err)
		return
	}

	card, err := b.SessionService.Reveal(req.UserId, req.CardId)
	if err != nil {
		if errors.Is(err, service.ErrStaleCard) {
			b.publish("reveal-response", comm.QuizCardRes{Status: "stale"}, msg.SocketId)
			return
		}
		log.Errorf("Error [SessionService.Reveal] %s", err)
		b.publishError(msg.SocketId)
		return
	}

	b.publish("reveal-response", comm.QuizCardRes{
		Status:      "revealed",
		CardId:      card.ID,
		Term:        card.Term,
		Translation: card.Translation,
	}, msg.SocketId)
}

func (b *Broker) handleGrade(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.GradeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid GradeRequest: %s", err)
		return
	}

	out, err := b.SessionService.Grade(ctx, req.UserId, req.CardId, req.Quality)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaleCard):
			b.publish("grade-response", comm.QuizCardRes{Status: "stale"}, msg.SocketId)
		case errors.Is(err, service.ErrValidation):
			b.publish("grade-response", comm.QuizCardRes{Status: "error", Message: "invalid quality"}, msg.SocketId)
		default:
			log.Errorf("Error [SessionService.Grade] %s", err)
			b.publishError(msg.SocketId)
		}
		return
	}

	if out.Next == nil {
		b.publish("grade-response", comm.QuizCardRes{Status: "done"}, msg.SocketId)
		return
	}

	b.publish("grade-response", presenting(out.Next, out.Remaining), msg.SocketId)
}

func (b *Broker) handleExport(ctx context.Context, msg *comm.ChatMessage) {
	var req comm.ExportRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("invalid ExportRequest: %s", err)
		return
	}

	data, err := b.ExportService.ExportCSV(ctx, req.UserId)
	if err != nil {
		log.Errorf("Error [ExportService.ExportCSV] %s", err)
		b.publishError(msg.SocketId)
		return
	}
	if data == nil {
		b.publish("export-response", comm.ExportRes{Status: "empty"}, msg.SocketId)
		return
	}

	b.publish("export-response", comm.ExportRes{
		Status:   "ok",
		FileName: "vocab_export.csv",
		Content:  string(data),
	}, msg.SocketId)
}

func presenting(card *models.Card, remaining int) comm.QuizCardRes {
	return comm.QuizCardRes{
		Status:    "presenting",
		CardId:    card.ID,
		Term:      card.Term,
		Remaining: remaining,
	}
}

func (b *Broker) publish(msgType string, payload interface{}, socketId string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("[%s] unable to marshal payload: %s", msgType, err)
		return
	}

	msg := &comm.ChatMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	out, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(chatTopic, out); err != nil {
		log.Errorf("Error publishing to topic %s: %s", chatTopic, err)
	}
}

func (b *Broker) publishError(socketId string) {
	b.publish("error-response", comm.ErrorRes{Status: "error", Message: "internal error, try again"}, socketId)
}
