package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"mail-invite-extractor/internal/config"
	"mail-invite-extractor/internal/emailprocessor"
	imapclient "mail-invite-extractor/internal/imap"
	"mail-invite-extractor/internal/logging"
	"mail-invite-extractor/internal/models"

	"github.com/spf13/cobra"
)

var imapFailureCount atomic.Int32

const failureSleepDuration = 30 * time.Minute

func newPollCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll an IMAP mailbox for unseen messages and print their records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				logging.SetLevel(cfg.LogLevel)
			}

			if once {
				return fetchAndProcessEmails(cfg, true)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.Log.Infof("Starting mailbox extraction, refresh every %s", cfg.Email.RefreshTime)

			for {
				if err := fetchAndProcessEmails(cfg, false); err != nil {
					handleIMAPFailure(ctx, err)
				}
				if !sleep(ctx, cfg.Email.RefreshTime) {
					logging.Log.Info("Stopping mailbox extraction")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration")
	cmd.Flags().BoolVar(&once, "once", false, "process a single batch and exit")

	return cmd
}

// fetchAndProcessEmails connects to the IMAP server, extracts the newest unseen messages and writes them out.
// Only connection failures are returned; everything else is logged.
func fetchAndProcessEmails(cfg *models.Config, writeEmpty bool) error {
	client := imapclient.NewStandardClient()

	if err := client.Connect(cfg.Email.Imap); err != nil {
		return err
	}
	defer func(client *imapclient.StandardClient) {
		_ = client.Close()
	}(client)

	// Reset failure count on successful connection
	imapFailureCount.Store(0)

	if err := client.Login(cfg.Email.Login, cfg.Email.Password); err != nil {
		logging.Log.Errorf("Login error: %v", err)
		return nil
	}

	if err := client.SelectMailbox(cfg.Email.MailBox); err != nil {
		logging.Log.Errorf("Folder selection error: %v", err)
		return nil
	}

	records, err := emailprocessor.NewProcessor(client, cfg).ProcessNew()
	if err != nil {
		logging.Log.Errorf("Error searching for unseen emails: %v", err)
		return nil
	}

	if len(records) == 0 && !writeEmpty {
		return nil
	}

	if err := writeRecords(cfg.Output, records); err != nil {
		logging.Log.Errorf("Error writing records: %v", err)
	}
	return nil
}

// writeRecords replaces the output file with the latest batch, or prints it when no file is configured
func writeRecords(path string, records []*models.EmailRecord) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return emailprocessor.WriteJSON(w, records)
}

// handleIMAPFailure increments the failure count and implements an exponential backoff strategy
func handleIMAPFailure(ctx context.Context, err error) {
	failures := imapFailureCount.Add(1)
	logging.Log.Errorf("IMAP connection error: %v", err)

	if failures >= 5 {
		backoff := backoffFor(failures)
		logging.Log.Warnf("IMAP failed %d times, waiting %s before next attempt", failures, backoff)
		sleep(ctx, backoff)
	}
}

func backoffFor(failures int32) time.Duration {
	base := 5 * time.Minute
	maxSteps := int32(10)

	n := failures - 5
	if n > maxSteps {
		n = maxSteps
	}

	backoff := base * time.Duration(1<<n)
	if backoff > failureSleepDuration {
		backoff = failureSleepDuration
	}
	return backoff
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
