package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/shlex"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/console"
	"github.com/iota-uz/staff-console/pkg/metrics"
	"github.com/iota-uz/staff-console/pkg/middleware"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/server"
)

const browseHelp = `commands:
  n, next                 next page
  p, prev                 previous page
  page N                  jump to page N
  size N                  rows per page
  filter COL[:OP]=VALUE   set a column filter
  unfilter COL|all        drop a filter
  sort [-]COL|none        order by a column
  open ID                 show a row of the current page
  edit ID [--set] F=V...  change fields of a record
  delete ID               delete a record
  done ID                 mark a task as completed
  r, reload               fetch the page again
  q, quit                 leave`

var errQuit = errors.New("quit")

// errorText prefers the API's user-facing message over the raw error.
func errorText(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiclient.UserMessage(err)
	}
	return err.Error()
}

type browser[T any, V columns.Row] struct {
	rt    *runtime
	res   resource[T, V]
	ctrl  *remotetable.Controller[T]
	sizes []int
	out   io.Writer
}

func (b *browser[T, V]) render() {
	console.RenderGrid(b.out, b.rt.title.Heading(), b.res.layout, viewSnapshot(b.ctrl.Snapshot(), b.res.view))
}

// settle waits for a fetch. Failures are already on screen, the grid keeps
// the last loaded page.
func (b *browser[T, V]) settle(ctx context.Context, p *remotetable.Pending, err error) error {
	if err != nil {
		return err
	}
	if err := p.Wait(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	b.render()
	return nil
}

// submit runs a record form wired to the table and shows the page once the
// table has caught up with the change.
func (b *browser[T, V]) submit(ctx context.Context, run func(*recordform.Form[T]) error) error {
	form := recordform.New[T](b.rt.notifier, recordform.ToTable(b.ctrl))
	if err := run(form); err != nil {
		printFieldErrors(b.out, form.FieldErrors())
		return reported(err)
	}
	return b.settle(ctx, b.ctrl.Latest(), nil)
}

// parseEdit reads "ID [--set] field=value ..."; values may be quoted.
func parseEdit(line string) (int, url.Values, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return 0, nil, err
	}
	if len(args) == 0 {
		return 0, nil, errors.New("edit wants an id and field=value pairs")
	}
	id, err := parseID(args[0])
	if err != nil {
		return 0, nil, err
	}
	pairs := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		if a != "--set" {
			pairs = append(pairs, a)
		}
	}
	if len(pairs) == 0 {
		return 0, nil, errors.New("edit wants at least one field=value pair")
	}
	values, err := parseAssignments(pairs)
	if err != nil {
		return 0, nil, err
	}
	return id, values, nil
}

func (b *browser[T, V]) edit(ctx context.Context, arg string) error {
	id, values, err := parseEdit(arg)
	if err != nil {
		return err
	}
	dto, save, err := b.res.edit(ctx, b.rt, id, values)
	if err != nil {
		return err
	}
	return b.submit(ctx, func(form *recordform.Form[T]) error {
		_, err := form.Update(ctx, dto, save)
		return err
	})
}

func (b *browser[T, V]) remove(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	del := b.res.remove(b.rt)
	return b.submit(ctx, func(form *recordform.Form[T]) error {
		return form.Delete(ctx, strconv.Itoa(id), func(ctx context.Context) (int, error) {
			return del(ctx, id)
		})
	})
}

func (b *browser[T, V]) done(ctx context.Context, arg string) error {
	if b.res.done == nil {
		return fmt.Errorf("%s cannot be marked done", b.res.name)
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	save, err := b.res.done(ctx, b.rt, id)
	if err != nil {
		return err
	}
	return b.submit(ctx, func(form *recordform.Form[T]) error {
		_, err := form.Update(ctx, nil, save)
		return err
	})
}

func (b *browser[T, V]) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	c := b.ctrl
	switch fields[0] {
	case "q", "quit", "exit":
		return errQuit
	case "h", "help", "?":
		_, _ = fmt.Fprintln(b.out, browseHelp)
		return nil
	case "n", "next":
		p, err := c.NextPage(ctx)
		return b.settle(ctx, p, err)
	case "p", "prev":
		p, err := c.PrevPage(ctx)
		return b.settle(ctx, p, err)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("page wants a number from 1, got %q", arg)
		}
		p, err := c.SetPage(ctx, n-1)
		return b.settle(ctx, p, err)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("size wants a number, got %q", arg)
		}
		if err := checkPageSize(n, b.sizes); err != nil {
			return err
		}
		p, err := c.SetPageSize(ctx, n)
		return b.settle(ctx, p, err)
	case "filter":
		f, err := parseFilter(b.res.layout, arg)
		if err != nil {
			return err
		}
		p, err := c.SetFilter(ctx, f)
		return b.settle(ctx, p, err)
	case "unfilter":
		if arg == "all" || arg == "" {
			return b.settle(ctx, c.ClearFilters(ctx), nil)
		}
		return b.settle(ctx, c.RemoveFilter(ctx, arg), nil)
	case "sort":
		if arg == "none" {
			arg = ""
		}
		rules, err := parseSort(b.res.layout, arg)
		if err != nil {
			return err
		}
		p, err := c.SetSorting(ctx, rules)
		return b.settle(ctx, p, err)
	case "open":
		for _, row := range c.Snapshot().Rows {
			if b.res.key(row) == arg {
				console.RenderRecord(b.out, b.res.layout, b.res.view(row))
				return nil
			}
		}
		return fmt.Errorf("no row %q on this page", arg)
	case "edit":
		return b.edit(ctx, arg)
	case "delete", "rm":
		return b.remove(ctx, arg)
	case "done":
		return b.done(ctx, arg)
	case "r", "reload":
		return b.settle(ctx, c.Reload(ctx), nil)
	default:
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
}

// serveMetrics exposes the table fetch metrics until ctx is done.
func serveMetrics(ctx context.Context, rt *runtime, addr string) {
	hs := server.NewHTTPServer(
		[]server.Controller{metrics.NewPrometheusController(rt.conf.MockAPI.MetricsPath, prometheus.DefaultGatherer)},
		[]mux.MiddlewareFunc{middleware.WithLogger(rt.logger, middleware.DefaultLoggerOptions())},
		nil, nil,
	)
	if err := hs.Start(ctx, addr); err != nil {
		rt.logger.WithError(err).WithField("addr", addr).Error("metrics server stopped")
	}
}

func newBrowseCmd[T any, V columns.Row](root *rootOptions, r resource[T, V], fetcher fetcherFunc[T]) *cobra.Command {
	var q queryFlags
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through the table interactively",
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
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				if metricsAddr != "" {
					go serveMetrics(ctx, rt, metricsAddr)
				}

				rt.setTitle(r.title)
				ctrl, err := r.controller(rt, fetcher(rt), state, nil)
				if err != nil {
					return withCode(exitUsage, err)
				}
				defer ctrl.Close()
				b := &browser[T, V]{rt: rt, res: r, ctrl: ctrl, sizes: sizes, out: rt.out}
				if err := b.settle(ctx, ctrl.Mount(ctx), nil); err != nil {
					return nil
				}

				lines := make(chan string)
				go func() {
					defer close(lines)
					scanner := bufio.NewScanner(cmd.InOrStdin())
					for scanner.Scan() {
						lines <- scanner.Text()
					}
				}()
				for {
					_, _ = fmt.Fprint(rt.out, "> ")
					var line string
					select {
					case <-ctx.Done():
						return nil
					case l, ok := <-lines:
						if !ok {
							return nil
						}
						line = l
					}
					err := b.exec(ctx, line)
					switch {
					case errors.Is(err, errQuit), ctx.Err() != nil:
						return nil
					case errors.Is(err, remotetable.ErrPageOutOfRange):
						rt.notifier.OpenNotification("no more pages in that direction", notification.Warning)
					case silent(err):
					case err != nil:
						rt.notifier.OpenNotification(errorText(err), notification.Error)
					}
				}
			})
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve table metrics on this address, e.g. :9100")
	return cmd
}
