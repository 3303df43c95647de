package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/modules/tasks/presentation/mappers"
	"github.com/iota-uz/staff-console/modules/tasks/presentation/viewmodels"
	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/dashboard"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

type taskResource = resource[task.Task, viewmodels.Task]

func tasksResource(title string) taskResource {
	return taskResource{
		name:   "tasks",
		title:  title,
		layout: columns.MustGet("tasks"),
		key:    task.Task.Key,
		view:   mappers.TaskToViewModel,
		edit:   editTask,
		remove: func(rt *runtime) func(context.Context, int) (int, error) {
			return rt.taskService().Delete
		},
		done: completeTask,
	}
}

func viewFetcher(view task.View) fetcherFunc[task.Task] {
	return func(rt *runtime) remotetable.Fetcher[task.Task] {
		return rt.taskService().ViewFetcher(view)
	}
}

// resolveAssignee replaces an employee's full name with its id.
func resolveAssignee(ctx context.Context, rt *runtime, values url.Values) error {
	ref := strings.TrimSpace(values.Get("assigned_to"))
	if ref == "" {
		return nil
	}
	if _, err := strconv.Atoi(ref); err == nil {
		return nil
	}
	opts, err := rt.employeeService().Options(ctx, ref, 5)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if strings.EqualFold(o.Label, ref) {
			values.Set("assigned_to", o.Value)
			return nil
		}
	}
	return withCode(exitValidation, fmt.Errorf("no employee named %q", ref))
}

func newTaskCreateCmd(root *rootOptions, r taskResource) *cobra.Command {
	var edit editFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long:  "Create a task. assigned_to accepts an employee id or full name.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				ctx := cmd.Context()
				values, err := edit.values(cmd, rt)
				if err != nil {
					return err
				}
				if err := resolveAssignee(ctx, rt, values); err != nil {
					return err
				}
				var dto task.CreateDTO
				if err := decodeAssignments(&dto, values); err != nil {
					return withCode(exitUsage, err)
				}
				svc := rt.taskService()
				form := recordform.New[task.Task](rt.notifier, nil)
				row, err := form.Create(ctx, &dto, func(ctx context.Context) (task.Task, int, error) {
					return svc.Create(ctx, &dto)
				})
				if err != nil {
					return formFailure(cmd, form, err)
				}
				return r.printRecord(rt, row)
			})
		},
	}
	edit.register(cmd, true)
	return cmd
}

func editTask(ctx context.Context, rt *runtime, id int, values url.Values) (recordform.Validatable, saveFunc[task.Task], error) {
	svc := rt.taskService()
	current, err := svc.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := resolveAssignee(ctx, rt, values); err != nil {
		return nil, nil, err
	}
	before := task.NewUpdateDTO(current)
	after, err := cloneDTO(before)
	if err != nil {
		return nil, nil, err
	}
	if err := decodeAssignments(&after, values); err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	return &after, func(ctx context.Context) (task.Task, int, error) {
		return svc.Update(ctx, id, &before, &after)
	}, nil
}

func completeTask(ctx context.Context, rt *runtime, id int) (saveFunc[task.Task], error) {
	svc := rt.taskService()
	current, err := svc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (task.Task, int, error) {
		return svc.MarkDone(ctx, current)
	}, nil
}

func newTaskDoneCmd(root *rootOptions, r taskResource) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				save, err := r.done(cmd.Context(), rt, id)
				if err != nil {
					return err
				}
				form := recordform.New[task.Task](rt.notifier, nil)
				row, err := form.Update(cmd.Context(), nil, save)
				if err != nil {
					return formFailure(cmd, form, err)
				}
				return r.printRecord(rt, row)
			})
		},
	}
}

func newTasksCmd(root *rootOptions) *cobra.Command {
	all := tasksResource("Tasks")
	completed := tasksResource(dashboard.TitleCompleted)
	inProcess := tasksResource(dashboard.TitleInProcess)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Tasks table and the completed / in-process dashboards",
	}
	cmd.AddCommand(newListCmd(root, all, "list", "List all tasks", viewFetcher(task.AllTasks)))
	cmd.AddCommand(newListCmd(root, completed, "completed", "List completed tasks", viewFetcher(task.CompletedTasks)))
	cmd.AddCommand(newListCmd(root, inProcess, "in-process", "List tasks still in process", viewFetcher(task.InProcessTasks)))
	cmd.AddCommand(newBrowseCmd(root, all, viewFetcher(task.AllTasks)))
	cmd.AddCommand(newGetCmd(root, all, func(rt *runtime) func(context.Context, int) (task.Task, error) {
		return rt.taskService().GetByID
	}))
	cmd.AddCommand(newTaskCreateCmd(root, all))
	cmd.AddCommand(newUpdateCmd(root, all, "Change fields of a task; only changed fields are sent", true))
	cmd.AddCommand(newTaskDoneCmd(root, all))
	cmd.AddCommand(newDeleteCmd(root, all))
	cmd.AddCommand(newExportCmd(root, all, viewFetcher(task.AllTasks)))
	return cmd
}
