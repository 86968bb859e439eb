package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/export"
	"github.com/JulianCode-PC/oa-docket/internal/pipeline"
)

func docketCmd(a *app) *cobra.Command {
	var pf pipelineFlags
	cmd := &cobra.Command{
		Use:   "docket <file>",
		Short: "Run the docketing chain on one document and print the case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := common.NewValidator().
				Field("file", args[0], common.Required, common.RegularFile).
				Error(); err != nil {
				return err
			}
			if err := pf.apply(cmd, a.cfg); err != nil {
				return err
			}
			proc, cleanup, err := a.newProcessor(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := proc.Process(cmd.Context(), args[0], pipeline.Options{})
			if res == nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), export.CaseTable(res.Case, res.Trace.Outcomes))
			return err
		},
	}
	pf.register(cmd)
	return cmd
}
