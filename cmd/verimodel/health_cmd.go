package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/verimodel/desktop/internal/backend"
)

var errBackendUnhealthy = errors.New("backend unhealthy")

func init() {
	rootCmd.AddCommand(newHealthCmd())
}

func newHealthCmd() *cobra.Command {
	var asJSON bool

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the backend health endpoint once",
		Long:  "Probe the backend health endpoint once. Exits 0 when healthy and 1 otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			prober := backend.NewProber(backend.Config{
				URL:     cfg.BackendURL,
				Timeout: cfg.BackendTimeout,
			})
			res := prober.Check(cmd.Context())

			if asJSON {
				out, err := backend.MarshalIndent(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				printHealth(cmd.OutOrStdout(), res, cfg.StartHint)
			}

			if !res.Healthy() {
				// the result was already printed
				cmd.SilenceErrors = true
				return errBackendUnhealthy
			}
			return nil
		},
	}

	healthCmd.Flags().BoolVar(&asJSON, "json", false, "Print the probe result as JSON")
	return healthCmd
}

func printHealth(w io.Writer, res backend.Result, hint string) {
	fmt.Fprintf(w, "%s %s\n", gray.Render("Backend:"), res.URL)

	if res.Healthy() {
		fmt.Fprintf(w, "%s  %s %s\n", gray.Render("Status:"), green.Render("healthy"),
			lightGray.Render(fmt.Sprintf("(HTTP %d in %dms)", res.StatusCode, res.LatencyMs)))
	} else {
		fmt.Fprintf(w, "%s  %s %s\n", gray.Render("Status:"), red.Render("unhealthy"),
			lightGray.Render(fmt.Sprintf("(%s)", res.Reason)))
		if res.StatusCode != 0 {
			fmt.Fprintf(w, "%s    HTTP %d\n", gray.Render("Code:"), res.StatusCode)
		}
		if res.Error != "" {
			fmt.Fprintf(w, "%s   %s\n", gray.Render("Error:"), res.Error)
		}
		if res.Reason == backend.ReasonConnect || res.Reason == backend.ReasonTimeout {
			fmt.Fprintf(w, "%s    %s\n", gray.Render("Hint:"), cyan.Render(hint))
		}
	}

	if res.Report == nil {
		return
	}
	if res.Report.Platform != "" {
		fmt.Fprintf(w, "%s %s\n", gray.Render("Platform:"), res.Report.Platform)
	}
	names := make([]string, 0, len(res.Report.Components))
	for name := range res.Report.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := res.Report.Components[name]
		if res.Report.Available(name) {
			state = green.Render(state)
		} else {
			state = red.Render(state)
		}
		fmt.Fprintf(w, "  %-24s %s\n", name, state)
	}
}
