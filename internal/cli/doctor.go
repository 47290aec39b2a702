package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify configuration and connectivity to both systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPathFrom(ctx))
			if err != nil {
				return err
			}

			var problems []string
			if err := cfg.Validate(); err != nil {
				problems = append(problems, err.Error())
			}

			if len(problems) == 0 {
				httpClient := &http.Client{Timeout: 15 * time.Second}

				if tasks, err := snow.New(cfg.ServiceNow, httpClient).ChangeTasks(ctx, false); err != nil {
					problems = append(problems, fmt.Sprintf("servicenow unreachable: %v", err))
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "servicenow: ok (%d unclaimed tasks)\n", len(tasks))
				}

				if projects, err := octopus.New(cfg.Octopus, httpClient).Projects(ctx); err != nil {
					problems = append(problems, fmt.Sprintf("octopus deploy unreachable: %v", err))
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "octopus deploy: ok (%d projects)\n", len(projects))
				}
			}

			if cfg.NotifyConfigured() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "webex: configured")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "webex: not configured (notifications disabled)")
			}

			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	return cmd
}
