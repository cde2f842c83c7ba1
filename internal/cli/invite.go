package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wedding-relay/internal/handler"
	"wedding-relay/internal/party"
	"wedding-relay/internal/whatsapp"
)

// NewInviteCommand creates the invite command.
func NewInviteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <first-name> [last-name]",
		Short: "Send the WhatsApp invitation to a guest's whole travel party",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log := setup()

			store, err := openDirectory(ctx, cfg.Directory)
			if err != nil {
				return fmt.Errorf("failed to open directory: %w", err)
			}

			first, last := nameArgs(args)
			res, err := party.NewResolver(store, log).Resolve(ctx, first, last)
			if err != nil {
				return err
			}
			if !res.Found {
				return fmt.Errorf("no guest named %q %q", first, last)
			}

			wa, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
			if err != nil {
				return fmt.Errorf("failed to initialize WhatsApp service: %w", err)
			}
			if err := wa.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to WhatsApp: %w", err)
			}
			defer wa.Disconnect()

			inviter := handler.NewInviter(wa, handler.WeddingDetails{
				WeddingDate:     cfg.WeddingDate,
				WeddingLocation: cfg.WeddingLocation,
				BrideName:       cfg.BrideName,
				GroomName:       cfg.GroomName,
			}, log)

			out := cmd.OutOrStdout()
			for _, o := range inviter.InviteParty(ctx, res.Party) {
				switch {
				case o.Skipped:
					fmt.Fprintf(out, "- %s: no phone number, skipped\n", o.Guest.DisplayName())
				case o.Err != nil:
					fmt.Fprintf(out, "❌ %s: %v\n", o.Guest.DisplayName(), o.Err)
				default:
					fmt.Fprintf(out, "✅ %s: invitation sent\n", o.Guest.DisplayName())
				}
			}
			return nil
		},
	}
}
