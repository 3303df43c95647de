package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/staff-console/pkg/types"
)

// parseSince accepts a date (2024-03-01) or a duration back from now (36h).
func parseSince(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		t := now.Add(-d)
		return &t, nil
	}
	date, err := types.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q: want a date or a duration", s)
	}
	return &date.Time, nil
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var params actionlog.FindParams
	var since string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show changes made from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseSince(since, time.Now())
			if err != nil {
				return withCode(exitUsage, err)
			}
			params.From = from
			return withRuntime(cmd, root, false, func(rt *runtime) error {
				logs, total, err := rt.logsService().ListActionLogs(cmd.Context(), &params)
				if err != nil {
					return err
				}
				if rt.json() {
					for _, l := range logs {
						if err := writeJSONLine(rt.out, l); err != nil {
							return err
						}
					}
					return nil
				}
				table := tablewriter.NewWriter(rt.out)
				table.SetAutoFormatHeaders(false)
				table.SetHeader([]string{"Time", "Actor", "Action", "Resource", "Record"})
				for _, l := range logs {
					record := ""
					if l.RecordID != 0 {
						record = "#" + strconv.Itoa(l.RecordID)
					}
					table.Append([]string{l.CreatedAt.Local().Format("2006-01-02 15:04:05"), l.Actor, l.Action, l.Resource, record})
				}
				table.Render()
				_, _ = fmt.Fprintf(rt.out, "%d of %d entries\n", len(logs), total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&params.Resource, "resource", "", "Only entries for this resource, e.g. tasks")
	cmd.Flags().StringVar(&params.Action, "action", "", "Only this action: create, update, delete, complete, login, logout, register")
	cmd.Flags().StringVar(&since, "since", "", "Only entries after a date (2024-03-01) or a duration ago (24h)")
	cmd.Flags().IntVar(&params.Limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "Entries to skip")
	return cmd
}
