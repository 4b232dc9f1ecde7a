package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/dashboard"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/report"
	"signal-dashboard/internal/signals"
)

// addReportCommands adds the report views.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))
	rootCmd.AddCommand(newLevelsCmd(app))
	rootCmd.AddCommand(newDiagnosticsCmd(app))
	rootCmd.AddCommand(newLintCmd(app))
}

// runPass records the visit for page and runs one pass.
func (a *App) runPass(cmd *cobra.Command, page string) (*dashboard.Pass, error) {
	a.Service.Visit(cmd.Context(), page, models.VisitSourceCLI, "", "")
	return a.Service.Run(cmd.Context())
}

func newTradesCmd(app *App) *cobra.Command {
	var symbol, status string

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List every trade derived from the signals file",
		Example: `  signals trades
  signals trades --symbol ABC
  signals trades --status forceExit --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st := models.TradeStatus(status)
			if st != "" && !st.Valid() {
				return apperrors.Wrapf(apperrors.ErrInvalidQuery, "unknown status %q (open, closed, forceExit, exit-only)", status)
			}

			pass, err := app.runPass(cmd, "trades")
			if err != nil {
				return err
			}
			trades := report.Filter(pass.Report.Trades, strings.TrimSpace(symbol), st)

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Warning("No trades")
				return nil
			}

			money := app.money()
			layout := app.Config.Report.DateFormat
			table := NewTable(output, "SYMBOL", "LVL", "ENTRY", "ENTRY DATE", "EXIT", "EXIT DATE", "CLOSE", "PROFIT", "REALIZED", "UNREALIZED", "MAX", "STATUS")
			for _, t := range trades {
				table.AddRow(
					t.Symbol,
					strconv.Itoa(t.Level),
					FormatPrice(t.Entry),
					FormatDate(t.EntryDate, layout),
					FormatPrice(t.Exit),
					FormatDate(t.ExitDate, layout),
					FormatPrice(t.ClosingPrice),
					output.FormatOptPnL(money, t.Profit),
					output.FormatOptPnL(money, t.RealizedProfit),
					output.FormatOptPnL(money, t.UnrealizedProfit),
					output.FormatOptPnL(money, t.MaxProfit),
					output.StatusLabel(t.Status),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades from %s", len(trades), pass.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "only this symbol")
	cmd.Flags().StringVar(&status, "status", "", "only this status (open, closed, forceExit, exit-only)")

	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Per-symbol profit summary and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			pass, err := app.runPass(cmd, "summary")
			if err != nil {
				return err
			}
			r := pass.Report

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"by_symbol": r.BySymbol,
					"totals":    r.Totals,
				})
			}

			money := app.money()
			output.Box("Profit", []string{
				"Realized:    " + output.FormatPnL(money, r.Totals.Realized),
				"Unrealized:  " + output.FormatPnL(money, r.Totals.Unrealized),
				"Combined:    " + output.FormatPnL(money, r.Totals.Combined),
				"Max:         " + output.FormatPnL(money, r.Totals.Max),
				"Missed:      " + money.Format(r.Totals.Missed),
			})
			output.Println()

			if len(r.BySymbol) == 0 {
				output.Warning("No trades")
				return nil
			}
			table := NewTable(output, "SYMBOL", "TRADES", "REALIZED", "UNREALIZED", "MAX", "MISSED")
			for _, s := range r.BySymbol {
				table.AddRow(
					s.Symbol,
					strconv.Itoa(s.Trades),
					output.FormatPnL(money, s.Realized),
					output.FormatPnL(money, s.Unrealized),
					output.FormatPnL(money, s.Max),
					money.Format(s.Missed),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newLevelsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Per-level profit summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			pass, err := app.runPass(cmd, "levels")
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(pass.Report.ByLevel)
			}
			if len(pass.Report.ByLevel) == 0 {
				output.Warning("No trades")
				return nil
			}

			money := app.money()
			table := NewTable(output, "LEVEL", "TRADES", "WITH PROFIT", "REALIZED", "UNREALIZED", "MAX", "TOTAL", "AVG/TRADE")
			for _, l := range pass.Report.ByLevel {
				avg := output.DimText(Absent)
				if v, ok := l.AvgProfit.Get(); ok {
					avg = output.FormatPnL(money, v)
				}
				table.AddRow(
					strconv.Itoa(l.Level),
					strconv.Itoa(l.TradeCount),
					strconv.Itoa(l.ProfitCount),
					output.FormatPnL(money, l.Realized),
					output.FormatPnL(money, l.Unrealized),
					output.FormatPnL(money, l.Max),
					output.FormatPnL(money, l.TotalProfit),
					avg,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newDiagnosticsCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Explain why levels produced no trade",
		Long: `Show, per symbol, how many levels were emitted, empty or rejected,
which exits were discarded as stale and which values could not be parsed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			pass, err := app.runPass(cmd, "diagnostics")
			if err != nil {
				return err
			}
			diag := pass.Result.Diagnostics

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"totals":  diag.Totals(),
					"symbols": diag.Symbols,
				})
			}

			totals := diag.Totals()
			output.Bold("Diagnostics for %s (%s)", pass.Path, FormatDuration(pass.Duration))
			output.Printf("  Symbols: %d  Emitted: %d  Empty: %d  Rejected: %d  Stale exits: %d  Malformed: %d\n",
				totals.Symbols, totals.Emitted, totals.Empty, totals.Rejected, totals.StaleExits, totals.Malformed)
			output.Println()

			table := NewTable(output, "SYMBOL", "EMITTED", "EMPTY", "REJECTED", "STALE", "MALFORMED")
			for _, s := range diag.Symbols {
				if !all && s.Clean() {
					continue
				}
				table.AddRow(
					s.Symbol,
					strconv.Itoa(s.Emitted),
					strconv.Itoa(s.Empty),
					strconv.Itoa(s.Rejected),
					strconv.Itoa(s.StaleExits),
					strconv.Itoa(s.Malformed),
				)
			}
			table.Render()

			issues := diag.Issues()
			if len(issues) == 0 {
				output.Println()
				output.Success("✓ No issues")
				return nil
			}
			output.Println()
			for _, issue := range issues {
				output.Warning("  %s", issue.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include symbols without issues")

	return cmd
}

func newLintCmd(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint [file]",
		Short: "Check the signals file structure",
		Long: `Validate the signals file against its JSON schema and list the values
the classifier could not use. Lint is advisory; use --strict to fail on findings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := app.Config.Data.SignalsFile
			if len(args) == 1 {
				path = args[0]
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return apperrors.NewInputError(path, "", apperrors.ErrSignalsNotFound)
				}
				return err
			}
			res, err := signals.Lint(raw)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				if err := output.JSON(map[string]interface{}{
					"ok":          res.OK(),
					"findings":    res.Findings,
					"issues":      res.Diagnostics.Issues(),
					"diagnostics": res.Diagnostics.Totals(),
				}); err != nil {
					return err
				}
			} else {
				printLint(output, path, res)
			}

			if strict && !res.OK() {
				return fmt.Errorf("%s: %d schema findings, %d issues", path, len(res.Findings), len(res.Diagnostics.Issues()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when anything is found")

	return cmd
}

func printLint(output *Output, path string, res *signals.LintResult) {
	if res.OK() {
		output.Success("✓ %s is clean", path)
		return
	}
	if len(res.Findings) > 0 {
		output.Bold("Schema")
		for _, f := range res.Findings {
			output.Error("  %s: %s", f.Location, f.Message)
		}
		output.Println()
	}
	if issues := res.Diagnostics.Issues(); len(issues) > 0 {
		output.Bold("Values")
		for _, issue := range issues {
			output.Warning("  %s", issue.String())
		}
	}
}
