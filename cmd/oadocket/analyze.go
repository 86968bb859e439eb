package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/pipeline"
	"github.com/JulianCode-PC/oa-docket/internal/record"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func analyzeCmd(a *app) *cobra.Command {
	var (
		pf      pipelineFlags
		out     string
		caseRef string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one document and emit its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := common.NewValidator().
				Field("file", path, common.Required, common.RegularFile).
				Field("format", format, oneOf(formatJSON, formatYAML)).
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

			var opts pipeline.Options
			if caseRef != "" {
				opts.CaseRef = &caseRef
			}
			res, procErr := proc.Process(cmd.Context(), path, opts)
			if res == nil {
				return procErr
			}
			if strings.TrimSpace(res.Extraction.Text) == "" {
				printError("[NOTE] No text was extracted. If this is a scanned PDF, install pdftoppm and tesseract for OCR.\n")
			} else if res.NeedsReview {
				printError("[NOTE] Low-confidence extraction; review the record by hand.\n")
			}

			if err := writeRecord(cmd.OutOrStdout(), out, format, res.Result); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[OK] Wrote: %s\n", out)
			}
			// A storage failure still leaves a usable record on disk.
			return procErr
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "write the record to this file instead of stdout")
	cmd.Flags().StringVar(&caseRef, "case-ref", "", "external case reference to attach")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

// writeRecord encodes r as format to path, or to stdout when path is empty.
func writeRecord(stdout io.Writer, path, format string, r record.Result) error {
	var buf bytes.Buffer
	var err error
	if strings.EqualFold(format, formatYAML) {
		err = record.EncodeYAML(&buf, r)
	} else {
		err = record.EncodeJSON(&buf, r)
	}
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if path == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// oneOf accepts a value (case-insensitive) from allowed.
func oneOf(allowed ...string) common.ValidationRule {
	return func(fieldName string, value any) *common.ValidationError {
		s, _ := value.(string)
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return &common.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be one of " + strings.Join(allowed, ", "),
		}
	}
}
