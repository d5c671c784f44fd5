package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"equity-dashboard/export"
	"equity-dashboard/internal/app"
	"equity-dashboard/models"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <company>",
	Short: "Compute indicators for one company and write them as CSV",
	Long: `Resolve a company, fetch its daily prices and write the indicator table
as CSV. Writes to <company>_cleaned_stock_data.csv unless --output is given;
use --output - for stdout.

Examples:
  dashboard export "INFOSYS LIMITED"
  dashboard export "INFOSYS LIMITED" --start 2023-01-01 --end 2024-01-01 -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("start", "", "start date (YYYY-MM-DD), defaults to the preset")
	exportCmd.Flags().String("end", "", "end date (YYYY-MM-DD, exclusive), defaults to the preset")
	exportCmd.Flags().StringP("output", "o", "", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	company := args[0]
	start, err := dateFlag(cmd, "start", cfg.Defaults.Start)
	if err != nil {
		return err
	}
	end, err := dateFlag(cmd, "end", cfg.Defaults.End)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = export.FileName(company)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := app.Wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	analysis, err := rt.App.Analyze(ctx, company, start, end)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteCSV(w, analysis.Series); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	if output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows for %s (%s) to %s\n",
			analysis.Series.Len(), analysis.Company, analysis.Ticker, output)
	}
	return nil
}

func dateFlag(cmd *cobra.Command, name string, def time.Time) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse(models.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, v)
	}
	return t, nil
}
