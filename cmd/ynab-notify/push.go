package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Crocmagnon/ynab-card-notify/internal/app"
	"github.com/Crocmagnon/ynab-card-notify/internal/config"
	"github.com/Crocmagnon/ynab-card-notify/internal/logger"
	"github.com/Crocmagnon/ynab-card-notify/internal/notify"
	"github.com/Crocmagnon/ynab-card-notify/internal/ynab"
)

type pushFlags struct {
	filename   string
	ledgerFile string
	budgetID   string
	token      string
	baseURL    string
	cleared    string
	dryRun     bool
	verbose    bool
}

func newPushCommand(client *http.Client) *cobra.Command {
	var flags pushFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Create the transaction for a notification stored in a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return push(cmd, flags, client)
		},
	}

	cmd.Flags().StringVarP(&flags.filename, "file", "f", "", "Notification JSON file (- for stdin)")
	cmd.Flags().StringVarP(&flags.ledgerFile, "ledger", "l", "", "Ledger document (defaults to the environment)")
	cmd.Flags().StringVarP(&flags.budgetID, "budget", "b", "", "Budget ID override")
	cmd.Flags().StringVarP(&flags.token, "token", "t", "", "Token override")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "YNAB API base URL")
	cmd.Flags().StringVar(&flags.cleared, "cleared", "", "cleared, uncleared or reconciled")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the transaction instead of creating it")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func push(cmd *cobra.Command, flags pushFlags, client *http.Client) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()

	notification, err := readNotification(cmd, flags.filename)
	if err != nil {
		return err
	}

	env, err := config.FromEnv()
	if err != nil {
		return err
	}

	if flags.ledgerFile != "" {
		env.Secrets = ""
		env.LedgerFile = flags.ledgerFile
	}

	if flags.baseURL != "" {
		env.BaseURL = flags.baseURL
	}

	if flags.cleared != "" {
		if err := env.Cleared.Decode(flags.cleared); err != nil {
			return fmt.Errorf("parsing --cleared: %w", err)
		}
	}

	ledger, err := app.LoadLedger(ctx, env)
	if err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	if flags.budgetID != "" {
		ledger.BudgetID = flags.budgetID
	}

	if flags.token != "" {
		ledger.AccessToken = flags.token
	}

	if flags.dryRun {
		txn, err := notify.Convert(notification, ledger, app.Options(env))
		if err != nil {
			return fmt.Errorf("converting notification: %w", err)
		}

		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(ynab.SaveTransactionPayload{Transaction: txn})
	}

	log := zerolog.Nop()
	if flags.verbose {
		log = logger.NewConsole(cmd.ErrOrStderr())
	}

	yc := ynab.NewClient(env.BaseURL, ledger.Credentials(), client)
	adapter := notify.NewAdapter(ledger, yc, app.Options(env), log)

	confirmation, err := adapter.Process(ctx, notification)
	if err != nil {
		return fmt.Errorf("pushing to YNAB: %w", err)
	}

	fmt.Fprintln(stdout, confirmation.Message)
	fmt.Fprintf(stdout, "transaction %s: %s %d milliunits on %s\n",
		confirmation.TransactionID, confirmation.PayeeName, confirmation.Amount, confirmation.Date)

	return nil
}

func readNotification(cmd *cobra.Command, filename string) (*notify.Notification, error) {
	var reader io.Reader = cmd.InOrStdin()

	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		defer file.Close()

		reader = file
	}

	notification, err := notify.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("reading notification: %w", err)
	}

	return notification, nil
}
