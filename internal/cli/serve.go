package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-relay/internal/config"
	"wedding-relay/internal/events"
	"wedding-relay/internal/handler"
	"wedding-relay/internal/llm"
	"wedding-relay/internal/otp"
	"wedding-relay/internal/party"
	"wedding-relay/internal/rsvp"
	"wedding-relay/internal/whatsapp"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the WhatsApp relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openDirectory(ctx, cfg.Directory)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL, log)
		if err != nil {
			return err
		}
		publisher = nats
	}
	defer publisher.Close()

	if cfg.WhatsAppEnabled {
		wa, err := startRelay(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer wa.Disconnect()
	}

	h := handler.New(
		party.NewResolver(store, log),
		rsvp.NewAggregator(store, publisher, log),
		otp.NewGenerator(cfg.TOTPSecrets),
		otp.NewInbox(cfg.SMSExpiry),
		log,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("directory", cfg.Directory.Backend).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startRelay(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*whatsapp.Service, error) {
	wa, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}

	completer := llm.NewClient(llm.Config{
		BaseURL: fmt.Sprintf("http://%s:1234", cfg.Bot.LMStudioHost),
		Model:   cfg.Bot.LMStudioModel,
	})
	relay := handler.NewRelayHandler(wa, completer, handler.RelayConfig{
		BotName:         cfg.Bot.Name,
		Echo:            cfg.Bot.Echo,
		RemoveThinkTags: cfg.Bot.RemoveThinkTags,
		LogCompletions:  cfg.Bot.LogCompletions,
	}, log)
	wa.SetMessageHandler(relay.HandleMessage)

	if err := wa.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}
	return wa, nil
}
