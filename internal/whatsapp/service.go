package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// Incoming is a text message received in a conversation
type Incoming struct {
	Chat   string
	Sender string
	Text   string
}

// MessageHandler is a callback function for handling messages
type MessageHandler func(ctx context.Context, msg Incoming) error

type Config struct {
	DataDir string
}

type Service struct {
	client         *whatsmeow.Client
	cfg            *Config
	log            zerolog.Logger
	messageHandler MessageHandler
}

// NewService creates a new WhatsApp service
func NewService(ctx context.Context, cfg *Config, log zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Use nil logger - sqlstore will use a no-op logger by default
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "WhatsApp").Logger(),
	}

	// Register event handlers
	client.AddEventHandler(func(evt interface{}) {
		service.eventHandler(evt)
	})

	return service, nil
}

// callingCodes maps the directory's Country values to dialing prefixes
var callingCodes = map[string]string{
	"TH": "66", "THAILAND": "66",
	"PH": "63", "PHILIPPINES": "63",
	"IL": "972", "ISRAEL": "972",
	"US": "1", "USA": "1", "UNITED STATES": "1",
	"CA": "1", "CANADA": "1",
	"GB": "44", "UK": "44", "UNITED KINGDOM": "44",
	"AU": "61", "AUSTRALIA": "61",
	"NZ": "64", "NEW ZEALAND": "64",
	"SG": "65", "SINGAPORE": "65",
	"MY": "60", "MALAYSIA": "60",
	"JP": "81", "JAPAN": "81",
	"DE": "49", "GERMANY": "49",
	"FR": "33", "FRANCE": "33",
}

// NormalizePhoneNumber strips formatting and returns digits in international
// format. A local number with a trunk 0 (081-234-5678) is rewritten with the
// calling code of country; numbers written with a leading + are kept as is.
// Local numbers for an unknown country are only stripped.
func NormalizePhoneNumber(phoneNumber, country string) string {
	international := strings.HasPrefix(strings.TrimSpace(phoneNumber), "+")
	phoneNumber = strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "", ".", "").Replace(phoneNumber)
	if international {
		return phoneNumber
	}

	code, ok := callingCodes[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return phoneNumber
	}

	switch {
	case strings.HasPrefix(phoneNumber, "00"):
		return phoneNumber[2:]
	case strings.HasPrefix(phoneNumber, "0"):
		return code + phoneNumber[1:]
	case strings.HasPrefix(phoneNumber, code+"0"):
		// 66081... carries both the calling code and the trunk 0
		return code + phoneNumber[len(code)+1:]
	}
	return phoneNumber
}

// Connect connects to WhatsApp, printing a pairing QR code on first run
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, _ := s.client.GetQRChannel(ctx)
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Printf("QR Code: %s\n", evt.Code)
			fmt.Println("Please scan this QR code with WhatsApp to connect.")
			continue
		}
		fmt.Println("\n" + q.ToSmallString(false))
		fmt.Println("📱 Please scan the QR code above with WhatsApp:")
		fmt.Println("   1. Open WhatsApp on your phone")
		fmt.Println("   2. Go to Settings > Linked Devices")
		fmt.Println("   3. Tap 'Link a Device'")
		fmt.Println("   4. Scan the QR code shown above")
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// SendText delivers text to an existing conversation, e.g. the chat a
// message came from.
func (s *Service) SendText(ctx context.Context, chat, text string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("invalid chat %q: %w", chat, err)
	}
	return s.send(ctx, jid, text)
}

// SendMessage sends a simple text message to a phone number in
// international format; see NormalizePhoneNumber.
func (s *Service) SendMessage(ctx context.Context, phoneNumber, message string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber, "")

	// Verify the number is on WhatsApp before sending
	resp, err := s.client.IsOnWhatsApp(ctx, []string{phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp or not in contacts", phoneNumber)
	}

	jid := resp[0].JID
	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Number verified on WhatsApp")

	if err := s.send(ctx, jid, message); err != nil {
		if strings.Contains(err.Error(), "unknown server") || strings.Contains(err.Error(), "can't send message") {
			return fmt.Errorf("failed to send message to %s (JID: %s): %w. Note: The recipient must be in your WhatsApp contacts", phoneNumber, jid.String(), err)
		}
		return err
	}
	return nil
}

func (s *Service) send(ctx context.Context, jid types.JID, text string) error {
	s.log.Debug().Str("jid", jid.String()).Msg("Attempting to send message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info().Str("id", string(sent.ID)).Time("timestamp", sent.Timestamp).Msg("Message sent")
	return nil
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	if evt == nil {
		return
	}
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}

// handleMessage forwards text messages from others to the message handler
func (s *Service) handleMessage(msg *events.Message) {
	if msg.Info.IsFromMe || msg.Message == nil {
		return
	}

	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		return
	}

	in := Incoming{
		Chat:   msg.Info.Chat.String(),
		Sender: msg.Info.Sender.String(),
		Text:   text,
	}

	if s.messageHandler == nil {
		s.log.Info().Str("sender", in.Sender).Str("message", in.Text).Msg("Received message")
		return
	}
	if err := s.messageHandler(context.Background(), in); err != nil {
		s.log.Error().Err(err).Str("chat", in.Chat).Msg("Error handling message")
	}
}

// SetMessageHandler sets a custom handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}
