package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/hrm/presentation/mappers"
	"github.com/iota-uz/staff-console/modules/hrm/presentation/viewmodels"
	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/lookup"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

func employeesResource() resource[employee.Employee, viewmodels.Employee] {
	return resource[employee.Employee, viewmodels.Employee]{
		name:   "employees",
		title:  "Employees",
		layout: columns.MustGet("employees"),
		key:    employee.Employee.Key,
		view:   mappers.EmployeeToViewModel,
		edit:   editEmployee,
		remove: func(rt *runtime) func(context.Context, int) (int, error) {
			return rt.employeeService().Delete
		},
	}
}

func employeesFetcher(rt *runtime) remotetable.Fetcher[employee.Employee] {
	return rt.employeeService()
}

// editFlags are shared by the create and update commands.
type editFlags struct {
	set    []string
	attach string
}

func (e *editFlags) register(cmd *cobra.Command, attachments bool) {
	cmd.Flags().StringArrayVar(&e.set, "set", nil, "Field assignment field=value; an empty value clears the field")
	if attachments {
		cmd.Flags().StringVar(&e.attach, "attach", "", "Upload FILE and attach it to the record")
	}
}

// values parses the assignments and uploads the attachment, if any.
func (e *editFlags) values(cmd *cobra.Command, rt *runtime) (url.Values, error) {
	values, err := parseAssignments(e.set)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	if e.attach != "" {
		att, err := uploadFile(cmd.Context(), rt, e.attach, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		values.Set("attachment", strconv.Itoa(att.ID))
	}
	return values, nil
}

// resolveOrganization replaces an organization name with its id.
func resolveOrganization(ctx context.Context, rt *runtime, values url.Values) error {
	ref := values.Get("organization")
	if ref == "" {
		return nil
	}
	id, err := rt.organizationService().Resolve(ctx, ref)
	if err != nil {
		return withCode(exitValidation, err)
	}
	values.Set("organization", strconv.Itoa(id))
	return nil
}

func newEmployeeCreateCmd(root *rootOptions, r resource[employee.Employee, viewmodels.Employee]) *cobra.Command {
	var edit editFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Long:  "Create an employee. organization accepts an id or the exact organization name.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				ctx := cmd.Context()
				values, err := edit.values(cmd, rt)
				if err != nil {
					return err
				}
				if err := resolveOrganization(ctx, rt, values); err != nil {
					return err
				}
				var dto employee.CreateDTO
				if err := decodeAssignments(&dto, values); err != nil {
					return withCode(exitUsage, err)
				}
				svc := rt.employeeService()
				form := recordform.New[employee.Employee](rt.notifier, nil)
				row, err := form.Create(ctx, &dto, func(ctx context.Context) (employee.Employee, int, error) {
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

func editEmployee(ctx context.Context, rt *runtime, id int, values url.Values) (recordform.Validatable, saveFunc[employee.Employee], error) {
	svc := rt.employeeService()
	current, err := svc.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := resolveOrganization(ctx, rt, values); err != nil {
		return nil, nil, err
	}
	before := employee.NewUpdateDTO(current)
	after, err := cloneDTO(before)
	if err != nil {
		return nil, nil, err
	}
	if err := decodeAssignments(&after, values); err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	return &after, func(ctx context.Context) (employee.Employee, int, error) {
		return svc.Update(ctx, id, &before, &after)
	}, nil
}

func newLookupCmd(root *rootOptions, short string, options func(rt *runtime) func(context.Context, string, int) ([]lookup.Option, error)) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "lookup [QUERY]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) == 1 {
				q = args[0]
			}
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				opts, err := options(rt)(cmd.Context(), q, limit)
				if err != nil {
					return err
				}
				if rt.json() {
					return writeJSONLine(rt.out, opts)
				}
				for _, o := range opts {
					_, _ = fmt.Fprintf(rt.out, "%6s  %s\n", o.Value, o.Label)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of suggestions")
	return cmd
}

func newEmployeesCmd(root *rootOptions) *cobra.Command {
	r := employeesResource()
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Employees table",
	}
	cmd.AddCommand(newListCmd(root, r, "list", "List employees", employeesFetcher))
	cmd.AddCommand(newBrowseCmd(root, r, employeesFetcher))
	cmd.AddCommand(newGetCmd(root, r, func(rt *runtime) func(context.Context, int) (employee.Employee, error) {
		return rt.employeeService().GetByID
	}))
	cmd.AddCommand(newEmployeeCreateCmd(root, r))
	cmd.AddCommand(newUpdateCmd(root, r, "Change fields of an employee; only changed fields are sent", true))
	cmd.AddCommand(newDeleteCmd(root, r))
	cmd.AddCommand(newExportCmd(root, r, employeesFetcher))
	cmd.AddCommand(newLookupCmd(root, "Suggest employees by name", func(rt *runtime) func(context.Context, string, int) ([]lookup.Option, error) {
		return rt.employeeService().Options
	}))
	return cmd
}
