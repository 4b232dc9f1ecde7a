package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/changelog"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/server"
)

// addServeCommands adds the HTTP dashboard and the commands reading its
// side data.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newVisitsCmd(app))
	rootCmd.AddCommand(newChangelogCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the reports as JSON under /api and the charts under /charts.
Every request re-reads the signals file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.Config.Server.Addr = addr
			}
			srv := server.New(app.Service)
			NewOutput(cmd).Info("Serving %s on %s (Ctrl+C to stop)", app.Config.Data.SignalsFile, srv.Addr())
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func newVisitsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Show dashboard visit counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			stats, err := app.Service.Visits(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			output.Bold("%d visits", stats.Total)
			output.Println()
			if len(stats.ByPage) > 0 {
				table := NewTable(output, "PAGE", "VISITS")
				for _, pc := range stats.ByPage {
					table.AddRow(pc.Page, strconv.FormatInt(pc.Count, 10))
				}
				table.Render()
				output.Println()
			}
			if len(stats.Recent) > 0 {
				table := NewTable(output, "WHEN", "PAGE", "SOURCE", "REMOTE")
				for _, v := range stats.Recent {
					remote := v.Remote
					if v.Source == models.VisitSourceCLI {
						remote = output.DimText(Absent)
					}
					table.AddRow(v.VisitedAt.Local().Format("2006-01-02 15:04:05"), v.Page, v.Source, remote)
				}
				table.Render()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "recent visits to list")

	return cmd
}

func newChangelogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "changelog",
		Short: "Show recent commits of the signals repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			app.Service.Visit(cmd.Context(), "changelog", models.VisitSourceCLI, "", "")
			entries, err := app.Service.Changelog(cmd.Context())
			if apperrors.Is(err, apperrors.ErrGitUnavailable) {
				if output.IsJSON() {
					return output.JSON([]changelog.Entry{})
				}
				output.Warning("Changelog unavailable: %v", err)
				return nil
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Warning("No commits")
				return nil
			}
			for _, e := range entries {
				output.Printf("%s - %s %s\n", output.Yellow(e.Hash), TruncateString(e.Subject, 72), output.DimText("("+e.When+")"))
			}
			return nil
		},
	}
}
