package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"animehub/internal/catalog"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "animehub:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	client := &apiClient{}

	root := &cobra.Command{
		Use:           "animehub",
		Short:         "Query the anime dashboard from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			client.base = strings.TrimRight(baseURL, "/")
			client.http = &http.Client{Timeout: timeout}
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "api", defaultBaseURL, "dashboard base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")

	root.AddCommand(
		newQueriesCmd(client),
		newRunCmd(client),
		newChartCmd(client),
		newAdminCmd(client),
	)
	return root
}

func newQueriesCmd(client *apiClient) *cobra.Command {
	var panel string
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "List the query catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := client.queries(cmd.Context(), panel)
			if err != nil {
				return err
			}
			printQueries(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().StringVar(&panel, "panel", "", "only list queries of this panel (user, analyst)")
	return cmd
}

func newRunCmd(client *apiClient) *cobra.Command {
	var params catalog.Params
	cmd := &cobra.Command{
		Use:   "run <query-id>",
		Short: "Run a catalog query and print its table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client.run(cmd.Context(), catalog.QueryID(args[0]), params)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&params.Genre, "genre", "", "genre label for genre queries")
	cmd.Flags().StringVar(&params.Studio, "studio", "", "studio label for studio queries")
	cmd.Flags().StringSliceVar(&params.Titles, "titles", nil, "anime titles for title queries")
	return cmd
}

func newChartCmd(client *apiClient) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "chart <query-id>",
		Short: "Download the bar chart of an analyst query as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = args[0] + ".png"
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := client.chart(cmd.Context(), catalog.QueryID(args[0]), f); err != nil {
				_ = f.Close()
				_ = os.Remove(path)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <query-id>.png)")
	return cmd
}

func newAdminCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:       "admin <stats|indexes|performance|cluster>",
		Short:     "Run an admin panel action",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"stats", "indexes", "performance", "cluster"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client.admin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}
