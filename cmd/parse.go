package main

import (
	"fmt"
	"os"

	"mail-invite-extractor/internal/archive"
	"mail-invite-extractor/internal/emailprocessor"
	"mail-invite-extractor/internal/mailparse"
	"mail-invite-extractor/internal/models"

	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var mbox bool

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Extract records from .eml files (or mbox archives with --mbox)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := []*models.EmailRecord{}

			for _, path := range args {
				if mbox {
					batch, err := archive.ReadMboxFile(path)
					if err != nil {
						return err
					}
					records = append(records, batch...)
					continue
				}

				record, err := archive.ReadEmlFile(path)
				if err != nil {
					return err
				}
				records = append(records, record)
			}

			return emailprocessor.WriteJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().BoolVar(&mbox, "mbox", false, "treat every FILE as an mbox archive")

	return cmd
}

func newICSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ics FILE",
		Short: "Scan a bare .ics file and print the extracted event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading %s: %w", args[0], err)
			}
			return emailprocessor.WriteJSON(cmd.OutOrStdout(), mailparse.ParseCalendarBytes(payload))
		},
	}
}
