package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/console"
	"github.com/iota-uz/staff-console/pkg/export"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

// exportPageSize is the page size used to walk a table for export.
const exportPageSize = 100

type saveFunc[T any] func(context.Context) (T, int, error)

// editFunc loads record id and prepares its update from field assignments.
type editFunc[T any] func(ctx context.Context, rt *runtime, id int, values url.Values) (recordform.Validatable, saveFunc[T], error)

// resource binds a domain type to its grid layout, view model and the
// record actions shared by the standalone commands and browse.
type resource[T any, V columns.Row] struct {
	name   string
	title  string
	layout columns.Layout
	key    func(T) string
	view   func(T) V
	edit   editFunc[T]
	remove func(rt *runtime) func(context.Context, int) (int, error)
	// done is nil for resources without a completion action.
	done func(ctx context.Context, rt *runtime, id int) (saveFunc[T], error)
}

func (r resource[T, V]) controller(rt *runtime, fetcher remotetable.Fetcher[T], state remotetable.QueryState, onChange func(remotetable.Snapshot[T])) (*remotetable.Controller[T], error) {
	return remotetable.New(fetcher, remotetable.Options[T]{
		Name:       r.name,
		Initial:    state,
		Translator: remotetable.Translator{Lookups: r.layout.Lookups()},
		Notifier:   rt.notifier,
		Logger:     rt.logger,
		OnChange:   onChange,
	})
}

func viewSnapshot[T any, V columns.Row](snap remotetable.Snapshot[T], view func(T) V) remotetable.Snapshot[V] {
	rows := make([]V, len(snap.Rows))
	for i, row := range snap.Rows {
		rows[i] = view(row)
	}
	return remotetable.Snapshot[V]{
		State:      snap.State,
		Rows:       rows,
		TotalCount: snap.TotalCount,
		PageCount:  snap.PageCount,
		Loading:    snap.Loading,
		Err:        snap.Err,
	}
}

type pagePayload[T any] struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	Results []T `json:"results"`
}

func (r resource[T, V]) render(rt *runtime, snap remotetable.Snapshot[T]) error {
	if rt.json() {
		results := snap.Rows
		if results == nil {
			results = []T{}
		}
		return writeJSONLine(rt.out, pagePayload[T]{
			Count:   snap.TotalCount,
			Page:    snap.State.Page.PageIndex + 1,
			Pages:   snap.PageCount,
			Results: results,
		})
	}
	console.RenderGrid(rt.out, rt.title.Heading(), r.layout, viewSnapshot(snap, r.view))
	return nil
}

func (r resource[T, V]) printRecord(rt *runtime, row T) error {
	if rt.json() {
		return writeJSONLine(rt.out, row)
	}
	console.RenderRecord(rt.out, r.layout, r.view(row))
	return nil
}

// waitFetch waits for a fetch. Failures were already shown by the table.
func waitFetch(ctx context.Context, p *remotetable.Pending) error {
	if err := p.Wait(ctx); err != nil {
		return reported(err)
	}
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid id %q", arg))
	}
	return id, nil
}

type fetcherFunc[T any] func(rt *runtime) remotetable.Fetcher[T]

func newListCmd[T any, V columns.Row](root *rootOptions, r resource[T, V], use, short string, fetcher fetcherFunc[T]) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				sizes, err := rt.conf.Table.Sizes()
				if err != nil {
					return withCode(exitUsage, err)
				}
				state, err := q.state(r.layout, rt.conf.Table.PageSize, sizes)
				if err != nil {
					return withCode(exitUsage, err)
				}
				rt.setTitle(r.title)
				ctrl, err := r.controller(rt, fetcher(rt), state, nil)
				if err != nil {
					return withCode(exitUsage, err)
				}
				defer ctrl.Close()
				if err := waitFetch(cmd.Context(), ctrl.Mount(cmd.Context())); err != nil {
					return err
				}
				return r.render(rt, ctrl.Snapshot())
			})
		},
	}
	q.register(cmd)
	return cmd
}

func newGetCmd[T any, V columns.Row](root *rootOptions, r resource[T, V], get func(rt *runtime) func(context.Context, int) (T, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				row, err := get(rt)(cmd.Context(), id)
				if err != nil {
					return err
				}
				return r.printRecord(rt, row)
			})
		},
	}
}

func newUpdateCmd[T any, V columns.Row](root *rootOptions, r resource[T, V], short string, attachments bool) *cobra.Command {
	var edit editFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				ctx := cmd.Context()
				values, err := edit.values(cmd, rt)
				if err != nil {
					return err
				}
				dto, save, err := r.edit(ctx, rt, id, values)
				if err != nil {
					return err
				}
				form := recordform.New[T](rt.notifier, nil)
				row, err := form.Update(ctx, dto, save)
				if err != nil {
					return formFailure(cmd, form, err)
				}
				return r.printRecord(rt, row)
			})
		},
	}
	edit.register(cmd, attachments)
	return cmd
}

func newDeleteCmd[T any, V columns.Row](root *rootOptions, r resource[T, V]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				form := recordform.New[T](rt.notifier, nil)
				del := r.remove(rt)
				err := form.Delete(cmd.Context(), strconv.Itoa(id), func(ctx context.Context) (int, error) {
					return del(ctx, id)
				})
				if err != nil {
					return reported(err)
				}
				return nil
			})
		},
	}
}

// collectPages walks the table from its current page to the last one.
func collectPages[T any](ctx context.Context, ctrl *remotetable.Controller[T]) ([]T, error) {
	if err := waitFetch(ctx, ctrl.Mount(ctx)); err != nil {
		return nil, err
	}
	rows := append([]T(nil), ctrl.Snapshot().Rows...)
	for {
		p, err := ctrl.NextPage(ctx)
		if errors.Is(err, remotetable.ErrPageOutOfRange) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if err := waitFetch(ctx, p); err != nil {
			return nil, err
		}
		rows = append(rows, ctrl.Snapshot().Rows...)
	}
}

func newExportCmd[T any, V columns.Row](root *rootOptions, r resource[T, V], fetcher fetcherFunc[T]) *cobra.Command {
	var q queryFlags
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching rows to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.size == 0 {
				q.size = exportPageSize
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				state, err := q.state(r.layout, exportPageSize, nil)
				if err != nil {
					return withCode(exitUsage, err)
				}
				ctrl, err := r.controller(rt, fetcher(rt), state, nil)
				if err != nil {
					return withCode(exitUsage, err)
				}
				defer ctrl.Close()
				rows, err := collectPages(cmd.Context(), ctrl)
				if err != nil {
					return err
				}
				views := make([]V, len(rows))
				for i, row := range rows {
					views[i] = r.view(row)
				}
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				if err := export.XLSX(f, r.title, r.layout, views); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", len(views), file)
				return nil
			})
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "Output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// formFailure lists field errors kept by the form. API failures were
// already shown by the notifier.
func formFailure[T any](cmd *cobra.Command, form *recordform.Form[T], err error) error {
	printFieldErrors(cmd.ErrOrStderr(), form.FieldErrors())
	return reported(err)
}
