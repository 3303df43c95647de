package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "console",
		Short:         "Staff console: employees, organizations and tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputTable && opts.output != outputJSON {
				return withCode(exitUsage, fmt.Errorf("invalid --output %q: want table or json", opts.output))
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env", ".env.local"}, "Environment files to load")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table or json")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newSignupCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newMenuCmd(opts))
	cmd.AddCommand(newEmployeesCmd(opts))
	cmd.AddCommand(newOrganizationsCmd(opts))
	cmd.AddCommand(newTasksCmd(opts))
	cmd.AddCommand(newUploadCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		if !silent(err) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(code)
	}
}
