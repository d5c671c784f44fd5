package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"equity-dashboard/services"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies [query]",
	Short: "Search the company listing",
	Long: `Download the company listing and print the companies whose name or
ticker contains the query, with the ticker the resolver maps them to.

Examples:
  dashboard companies
  dashboard companies bank --limit 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.Flags().IntP("limit", "n", 20, "maximum number of companies to print")
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = strings.TrimSpace(args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolver, err := services.NewListingService(cfg.Listing.URL, cfg.Listing.Suffix, cfg.ProviderTimeout()).Load(ctx)
	if err != nil {
		return err
	}

	return printCompanies(cmd, resolver.Search(query, limit))
}

func printCompanies(cmd *cobra.Command, companies []services.Company) error {
	if len(companies) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no matching companies")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tCOMPANY")
	for _, c := range companies {
		fmt.Fprintf(tw, "%s\t%s\n", c.Ticker, c.Name)
	}
	return tw.Flush()
}
