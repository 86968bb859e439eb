package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JulianCode-PC/oa-docket/internal/common"
)

func dbhealthCmd(a *app) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "dbhealth",
		Short: "Ping the docket database and apply pending migrations",
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
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] DB health: %s reachable, schema up to date\n", store.Driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "docket database DSN (defaults to database.dsn)")
	return cmd
}
