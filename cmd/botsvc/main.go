package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	config "github.com/lamnochka-debug/vocab-services/configs"
	"github.com/lamnochka-debug/vocab-services/internal/comm"
	natscli "github.com/lamnochka-debug/vocab-services/internal/nats"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "bot"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

const welcome = "Привет! Я помогу тебе учить слова по системе интервальных повторений.\n\n" +
	"Команды:\n" +
	"• /add <слово> ; <перевод> — добавить пару (пример: /add apple; яблоко)\n" +
	"• /list — последние 20 слов\n" +
	"• /due — сколько карточек к повторению сейчас\n" +
	"• /quiz — начать тренировку\n" +
	"• /export — выгрузить все слова в CSV"

// Telegram bot instance
var telegramBot *tgbotapi.BotAPI

func main() {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	telegramBot = bot
	log.Infof("Authorized on telegram account %s", bot.Self.UserName)

	// Connect to NATS
	nc, err := natscli.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Conn.Close()
	log.Infof("NATS connected at %s", nc.Url)

	// Subscribe to vocab service responses
	_, err = nc.Conn.Subscribe("chat.service", func(m *nats.Msg) {
		handleChatResponse(m)
	})
	if err != nil {
		log.Fatalf("Subscribe chat.service error: %v", err)
	}

	// Long-poll telegram updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)
	for update := range updates {
		handleUpdate(nc, update)
	}
}

func handleUpdate(nc *natscli.Nats, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		handleCallback(nc, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			sendText(chatID, welcome)
		case "add":
			handleAddCommand(nc, userID, chatID, msg.CommandArguments())
		case "list":
			publishEvent(nc, "list", comm.ListCardsRequest{UserId: userID}, chatID)
		case "due":
			publishEvent(nc, "due", comm.DueCountRequest{UserId: userID}, chatID)
		case "quiz":
			publishEvent(nc, "quiz-start", comm.QuizStartRequest{UserId: userID}, chatID)
		case "export":
			publishEvent(nc, "export", comm.ExportRequest{UserId: userID}, chatID)
		default:
			sendText(chatID, "Не знаю такой команды. /start — список команд")
		}
		return
	}

	// Allow sending just "word; перевод" without /add
	if term, translation, ok := service.ParsePair(msg.Text); ok {
		publishEvent(nc, "add", comm.AddCardRequest{
			UserId:      userID,
			Term:        term,
			Translation: translation,
		}, chatID)
	}
}

func handleAddCommand(nc *natscli.Nats, userID, chatID int64, args string) {
	term, translation, ok := service.ParsePair(args)
	if !ok {
		sendText(chatID, "Формат: /add слово ; перевод  (пример: /add apple; яблоко)")
		return
	}

	publishEvent(nc, "add", comm.AddCardRequest{
		UserId:      userID,
		Term:        term,
		Translation: translation,
	}, chatID)
}

// handleCallback translates quiz button presses into reveal/grade events.
// Callback data: "show:<cardId>" or "grade:<quality>:<cardId>".
func handleCallback(nc *natscli.Nats, query *tgbotapi.CallbackQuery) {
	// stop the loading spinner on the button
	if _, err := telegramBot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Errorf("Failed to answer callback: %v", err)
	}

	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	if strings.HasPrefix(data, "show:") {
		cardID, err := strconv.ParseInt(strings.TrimPrefix(data, "show:"), 10, 64)
		if err != nil {
			log.Errorf("Invalid show callback %q: %v", data, err)
			return
		}
		publishEvent(nc, "reveal", comm.RevealRequest{UserId: userID, CardId: cardID}, chatID)
		return
	}

	if strings.HasPrefix(data, "grade:") {
		parts := strings.SplitN(data, ":", 3)
		if len(parts) != 3 {
			log.Errorf("Invalid grade callback %q", data)
			return
		}
		quality, err1 := strconv.Atoi(parts[1])
		cardID, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			log.Errorf("Invalid grade callback %q", data)
			return
		}
		publishEvent(nc, "grade", comm.GradeRequest{UserId: userID, CardId: cardID, Quality: quality}, chatID)
		return
	}

	log.Warnf("unknown callback data: %s", data)
}

// publishEvent wraps a payload into a ChatMessage addressed back to this
// telegram chat and hands it to the vocab service.
func publishEvent(nc *natscli.Nats, msgType string, payload interface{}, chatID int64) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("[%s] unable to marshal payload: %v", msgType, err)
		return
	}

	msg := comm.ChatMessage{
		Type:     msgType,
		Data:     data,
		SocketId: fmt.Sprintf("tg:%d", chatID),
	}

	out, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := nc.Conn.Publish("vocab.service", out); err != nil {
		log.Errorf("Error publishing to vocab.service: %v", err)
	}
}

// handleChatResponse renders vocab service responses into telegram messages.
func handleChatResponse(m *nats.Msg) {
	var msg comm.ChatMessage
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		log.Errorf("invalid ChatMessage: %v", err)
		return
	}

	// only "tg:" sockets belong to this transport
	if !strings.HasPrefix(msg.SocketId, "tg:") {
		return
	}
	chatID, err := strconv.ParseInt(strings.TrimPrefix(msg.SocketId, "tg:"), 10, 64)
	if err != nil {
		log.Errorf("invalid telegram socket id %q: %v", msg.SocketId, err)
		return
	}

	switch msg.Type {
	case "add-response":
		renderAddRes(chatID, msg.Data)
	case "list-response":
		renderListRes(chatID, msg.Data)
	case "due-response":
		renderDueRes(chatID, msg.Data)
	case "quiz-card":
		renderQuizCard(chatID, msg.Data)
	case "reveal-response":
		renderRevealRes(chatID, msg.Data)
	case "grade-response":
		renderGradeRes(chatID, msg.Data)
	case "export-response":
		renderExportRes(chatID, msg.Data)
	case "error-response":
		sendText(chatID, "Что-то пошло не так, попробуй ещё раз.")
	default:
		log.Warnf("unknown response type: %s", msg.Type)
	}
}

func renderAddRes(chatID int64, data json.RawMessage) {
	var res comm.AddCardRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid AddCardRes: %v", err)
		return
	}
	if res.Status != "ok" {
		sendText(chatID, "Формат: /add слово ; перевод  (пример: /add apple; яблоко)")
		return
	}
	sendHTML(chatID, fmt.Sprintf("Добавил: <b>%s</b> — %s (id %d)", res.Term, res.Translation, res.CardId))
}

func renderListRes(chatID int64, data json.RawMessage) {
	var res comm.ListCardsRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid ListCardsRes: %v", err)
		return
	}
	if len(res.Cards) == 0 {
		sendText(chatID, "Список пуст. Добавь слова через /add.")
		return
	}

	lines := make([]string, 0, len(res.Cards))
	for _, c := range res.Cards {
		lines = append(lines, fmt.Sprintf("%d. <b>%s</b> — %s (повт: %s)", c.CardId, c.Term, c.Translation, c.NextReview))
	}
	sendHTML(chatID, strings.Join(lines, "\n"))
}

func renderDueRes(chatID int64, data json.RawMessage) {
	var res comm.DueCountRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid DueCountRes: %v", err)
		return
	}
	sendText(chatID, fmt.Sprintf("К повторению карточек: %d", res.Count))
}

func renderQuizCard(chatID int64, data json.RawMessage) {
	var res comm.QuizCardRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid QuizCardRes: %v", err)
		return
	}

	switch res.Status {
	case "presenting":
		sendCardPrompt(chatID, res)
	case "empty":
		sendText(chatID, "Нет карточек. Добавь слова через /add.")
	default:
		log.Warnf("unexpected quiz-card status: %s", res.Status)
	}
}

func renderRevealRes(chatID int64, data json.RawMessage) {
	var res comm.QuizCardRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid QuizCardRes: %v", err)
		return
	}

	if res.Status != "revealed" {
		sendText(chatID, "Карточка не найдена")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("<b>%s</b> — %s\nОтметь ответ:", res.Term, res.Translation))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Знал", fmt.Sprintf("grade:%d:%d", comm.QualityKnew, res.CardId)),
			tgbotapi.NewInlineKeyboardButtonData("Забыл", fmt.Sprintf("grade:%d:%d", comm.QualityForgot, res.CardId)),
		),
	)
	if _, err := telegramBot.Send(msg); err != nil {
		log.Errorf("Failed to send reveal to chat %d: %v", chatID, err)
	}
}

func renderGradeRes(chatID int64, data json.RawMessage) {
	var res comm.QuizCardRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid QuizCardRes: %v", err)
		return
	}

	switch res.Status {
	case "presenting":
		sendText(chatID, "Сохранено. Следующая карточка →")
		sendCardPrompt(chatID, res)
	case "done":
		sendText(chatID, "Готово! Сессия завершена. /quiz — новая сессия")
	case "stale":
		sendText(chatID, "Карточка не найдена")
	default:
		sendText(chatID, "Что-то пошло не так, попробуй ещё раз.")
	}
}

func renderExportRes(chatID int64, data json.RawMessage) {
	var res comm.ExportRes
	if err := json.Unmarshal(data, &res); err != nil {
		log.Errorf("invalid ExportRes: %v", err)
		return
	}
	if res.Status != "ok" {
		sendText(chatID, "Нет данных для экспорта.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  res.FileName,
		Bytes: []byte(res.Content),
	})
	if _, err := telegramBot.Send(doc); err != nil {
		log.Errorf("Failed to send export to chat %d: %v", chatID, err)
	}
}

// sendCardPrompt asks the term with the translation hidden under a button.
func sendCardPrompt(chatID int64, res comm.QuizCardRes) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Что значит: <b>%s</b>?", res.Term))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Показать перевод", fmt.Sprintf("show:%d", res.CardId)),
		),
	)
	if _, err := telegramBot.Send(msg); err != nil {
		log.Errorf("Failed to send card prompt to chat %d: %v", chatID, err)
	}
}

func sendText(chatID int64, text string) {
	if _, err := telegramBot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Errorf("Failed to send telegram message to chat %d: %v", chatID, err)
	}
}

func sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := telegramBot.Send(msg); err != nil {
		log.Errorf("Failed to send telegram message to chat %d: %v", chatID, err)
	}
}
