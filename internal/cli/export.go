package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/chart"
	"signal-dashboard/internal/report"
)

// addExportCommands adds file exports.
func addExportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
}

func newExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades and summaries as JSON, CSV or YAML",
		Long: `Export the report. JSON and YAML carry trades, summaries and totals;
CSV carries one row per trade with empty cells for missing values.`,
		Example: `  signals export --format csv --out trades.csv
  signals export --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			pass, err := app.runPass(cmd, "export")
			if err != nil {
				return err
			}

			return writeTo(cmd, out, func(w io.Writer) error {
				return report.Export(w, pass.Report, f)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")

	return cmd
}

func newChartCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render profit charts to an HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			pass, err := app.runPass(cmd, "charts")
			if err != nil {
				return err
			}

			err = writeTo(cmd, out, func(w io.Writer) error {
				return chart.Render(w, pass.Report, chart.Options{Theme: app.Config.Server.ChartTheme})
			})
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				if output.IsJSON() {
					return output.JSON(map[string]string{"path": out})
				}
				output.Success("✓ Charts written to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "charts.html", "output file, - for stdout")

	return cmd
}

// writeTo runs write against path, or the command's stdout when path is
// empty or "-".
func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
