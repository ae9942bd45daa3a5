package notify

import (
	"encoding/json"
	"fmt"

	"reservio/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes reservation lifecycle events to manager chats.
// Without a bot token the notifier is disabled and all calls are no-ops.
type TelegramNotifier struct {
	bot     sender
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewTelegramNotifier connects to the Bot API. An empty token returns a
// disabled notifier, not an error.
func NewTelegramNotifier(token string, chatIDs []int64, debug bool, logger *zerolog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{chatIDs: chatIDs, logger: logger}
	if token == "" {
		if logger != nil {
			logger.Info().Msg("telegram notifications disabled: no bot token")
		}
		return n, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	botAPI.Debug = debug
	n.bot = botAPI

	if logger != nil {
		logger.Info().Str("account", botAPI.Self.UserName).Msg("telegram notifier connected")
	}
	return n, nil
}

// SubscribeTo wires the notifier into the event bus.
func (n *TelegramNotifier) SubscribeTo(bus *events.EventBus) {
	if bus == nil {
		return
	}
	for _, eventType := range []string{
		events.EventReservationCreated,
		events.EventReservationConfirmed,
		events.EventReservationCancelled,
		events.EventReservationCompleted,
	} {
		bus.Subscribe(eventType, n.handleEvent)
	}
}

func (n *TelegramNotifier) handleEvent(event *events.Event) error {
	if n.bot == nil {
		return nil
	}

	var payload events.ReservationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		if n.logger != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode event payload")
		}
		return err
	}

	text := formatMessage(event.Type, payload)
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil && n.logger != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram notification")
		}
	}
	return nil
}

func formatMessage(eventType string, p events.ReservationEventPayload) string {
	var action string
	switch eventType {
	case events.EventReservationCreated:
		action = "New reservation"
	case events.EventReservationConfirmed:
		action = "Reservation confirmed"
	case events.EventReservationCancelled:
		action = "Reservation cancelled"
	case events.EventReservationCompleted:
		action = "Stay completed"
	default:
		action = eventType
	}

	return fmt.Sprintf("%s #%d\nRoom %s, %s\n%s - %s\nTotal: %.2f",
		action,
		p.ReservationID,
		p.RoomNumber,
		p.GuestName,
		p.CheckIn.Format("02.01.2006"),
		p.CheckOut.Format("02.01.2006"),
		float64(p.TotalCents)/100,
	)
}
