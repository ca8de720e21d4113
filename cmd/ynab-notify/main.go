package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, "loading .env:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, http.DefaultClient); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, client *http.Client) error {
	root := newRootCommand(stdout, client)
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func newRootCommand(stdout io.Writer, client *http.Client) *cobra.Command {
	root := &cobra.Command{
		Use:   "ynab-notify",
		Short: "Turn card purchase notifications into YNAB transactions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.AddCommand(newPushCommand(client), newServeCommand(client))

	return root
}
