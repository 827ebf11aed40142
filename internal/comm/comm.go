package comm

import (
	"encoding/json"
)

// ChatMessage is the envelope exchanged between the transport services
// (botsvc, websvc) and the core vocab service over NATS.
type ChatMessage struct {
	Type     string          `json:"type"` // e.g. "add", "quiz-start", "grade"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"` // transport session id, e.g. "tg:<chatid>" or websocket uuid
}

// Quality values accepted by the grade event.
const (
	QualityForgot = 1
	QualityKnew   = 5
)

type AddCardRequest struct {
	UserId      int64  `json:"user_id"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

type AddCardRes struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	CardId      int64  `json:"card_id"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

type ListCardsRequest struct {
	UserId int64 `json:"user_id"`
}

type CardItem struct {
	CardId      int64  `json:"card_id"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
	NextReview  string `json:"next_review"` // date only, for display
}

type ListCardsRes struct {
	Status string     `json:"status"`
	Cards  []CardItem `json:"cards"`
}

type DueCountRequest struct {
	UserId int64 `json:"user_id"`
}

type DueCountRes struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type QuizStartRequest struct {
	UserId int64 `json:"user_id"`
}

type RevealRequest struct {
	UserId int64 `json:"user_id"`
	CardId int64 `json:"card_id"`
}

type GradeRequest struct {
	UserId  int64 `json:"user_id"`
	CardId  int64 `json:"card_id"`
	Quality int   `json:"quality"`
}

// QuizCardRes carries the card currently presented or revealed.
// Status is one of "presenting", "revealed", "empty", "done", "stale", "error".
type QuizCardRes struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	CardId      int64  `json:"card_id,omitempty"`
	Term        string `json:"term,omitempty"`
	Translation string `json:"translation,omitempty"`
	Remaining   int    `json:"remaining,omitempty"`
}

type ExportRequest struct {
	UserId int64 `json:"user_id"`
}

type ExportRes struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Content  string `json:"content,omitempty"` // csv payload
}

type ErrorRes struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
