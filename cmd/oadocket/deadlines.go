package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/entity"
	"github.com/JulianCode-PC/oa-docket/internal/export"
	repo "github.com/JulianCode-PC/oa-docket/internal/repository"
)

const defaultHorizonDays = 30

func deadlinesCmd(a *app) *cobra.Command {
	var (
		db     string
		before string
	)
	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List pending stored deadlines due on or before a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				a.cfg.Database.DSN = db
				a.cfg.Database.Driver = driverFor(db, a.cfg.Database.Driver)
			}
			if err := common.NewValidator().
				Field("db", a.cfg.Database.DSN, common.Required).
				Error(); err != nil {
				return err
			}
			cutoff, err := parseCutoff(before, time.Now())
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(a.logger)

			due, err := repo.NewDocketRepository(store, a.logger).DueBefore(cmd.Context(), cutoff)
			if err != nil {
				return common.NewAppError(common.CodeStorage, "list deadlines", fmt.Errorf("%w: %w", common.ErrDatabase, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), export.DueTable(due))
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "docket database DSN (defaults to database.dsn)")
	cmd.Flags().StringVar(&before, "before", "", "cutoff date YYYY-MM-DD (defaults to 30 days from today)")
	return cmd
}

// parseCutoff reads an ISO date, or returns now plus the default horizon when s is empty.
func parseCutoff(s string, now time.Time) (entity.Date, error) {
	if s == "" {
		return entity.DateOf(now).AddDays(defaultHorizonDays), nil
	}
	d, err := entity.ParseDate(s)
	if err != nil {
		return entity.Date{}, common.NewAppError(common.CodeValidation,
			fmt.Sprintf("invalid --before date %q, use YYYY-MM-DD", s), fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	return d, nil
}
