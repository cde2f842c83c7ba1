package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-relay/internal/config"
	"wedding-relay/internal/directory"
	"wedding-relay/internal/logging"
)

// NewRootCommand creates the wedding-relay command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wedding-relay",
		Short: "Wedding RSVP directory and chat relay",
		Long: `Looks up invited guests and their travel parties in the guest directory,
records RSVP answers back into it, and relays chat mentions to a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewLookupCommand())
	cmd.AddCommand(NewInviteCommand())

	return cmd
}

func setup() (*config.Config, zerolog.Logger) {
	cfg := config.LoadConfig()
	return cfg, logging.New(cfg.LogLevel, cfg.LogPretty)
}

// openDirectory opens the configured directory backend.
func openDirectory(ctx context.Context, cfg config.DirectoryConfig) (directory.Store, error) {
	switch cfg.Backend {
	case "sheets":
		return directory.NewSheetsStore(ctx, directory.SheetsConfig{
			SpreadsheetID: cfg.SpreadsheetID,
			SheetName:     cfg.SheetName,
			Credentials:   cfg.Credentials,
		})
	case "file":
		return directory.NewFileStore(cfg.File)
	default:
		return nil, fmt.Errorf("unknown directory backend %q: must be sheets or file", cfg.Backend)
	}
}

// nameArgs reads "<first> [last]".
func nameArgs(args []string) (string, string) {
	if len(args) > 1 {
		return args[0], args[1]
	}
	return args[0], ""
}
