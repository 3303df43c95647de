package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/internal/mockapi"
	"github.com/iota-uz/staff-console/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	var (
		port      int
		employees int
		rateLimit int
	)
	cmd := &cobra.Command{
		Use:           "mockapi",
		Short:         "In-memory API for developing the staff console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := configuration.Load(".env", ".env.local")
			if err != nil {
				return err
			}
			defer conf.Unload()

			opts := mockapi.OptionsFromConfig(conf)
			if cmd.Flags().Changed("employees") {
				opts.Seed.Employees = employees
			}
			if cmd.Flags().Changed("rate-limit") {
				opts.RateLimit = rateLimit
			}
			if !cmd.Flags().Changed("port") {
				port = conf.MockAPI.Port
			}

			srv, err := mockapi.New(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "mock api on http://localhost:%d/api (sign in as %s / %s)\n", port, mockapi.AdminEmail, mockapi.AdminPassword)
			return srv.ListenAndServe(ctx, ":"+strconv.Itoa(port))
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "listen port (MOCK_API_PORT)")
	cmd.Flags().IntVar(&employees, "employees", 42, "number of seeded employees (MOCK_API_SEED_EMPLOYEES)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per second per client, 0 disables")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
