package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/notify"
	sqliteRepo "github.com/sakif/dailylog/internal/repository/sqlite"
	"github.com/sakif/dailylog/internal/service"
)

func newImportCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a legacy logs.json file into a user's journal",
		Long: `Reads a JSON array of log entries (the file the previous server kept
on disk, or a browser localStorage export) and merges it into the journal of
the user with the given email, newest timestamp wins. No notifications are
sent for imported entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			candidates, malformed, err := readLegacyFile(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			db, err := sqliteRepo.New(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := db.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("looking up %s: %w", email, err)
			}

			// Import never enqueues, so a queue over Disabled is never started.
			queue := notify.NewQueue(notify.Disabled{}, cfg.Notify, log)
			entries := service.NewEntryService(db, queue, cfg.Progress, log)

			res, err := entries.Import(cmd.Context(), user.ID, candidates, malformed)
			if err != nil {
				return err
			}

			log.Info("import finished",
				slog.String("user", user.Email),
				slog.Int("added", res.Added),
				slog.Int("updated", res.Updated),
				slog.Int("skipped", res.Skipped),
			)
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "user", "u", "", "email of the account to import into (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// readLegacyFile decodes a JSON array of entries. Items that do not decode
// are counted rather than failing the whole file.
func readLegacyFile(r io.Reader) ([]model.Entry, int, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("expected a JSON array of log entries: %w", err)
	}
	entries, malformed := service.DecodeCandidates(raw)
	return entries, malformed, nil
}
