package main

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/org/presentation/mappers"
	"github.com/iota-uz/staff-console/modules/org/presentation/viewmodels"
	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/lookup"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

type organizationResource = resource[organization.Organization, viewmodels.Organization]

func organizationsResource() organizationResource {
	return organizationResource{
		name:   "organizations",
		title:  "Organizations",
		layout: columns.MustGet("organizations"),
		key:    organization.Organization.Key,
		view:   mappers.OrganizationToViewModel,
		edit:   editOrganization,
		remove: func(rt *runtime) func(context.Context, int) (int, error) {
			return rt.organizationService().Delete
		},
	}
}

func organizationsFetcher(rt *runtime) remotetable.Fetcher[organization.Organization] {
	return rt.organizationService()
}

func newOrganizationCreateCmd(root *rootOptions, r organizationResource) *cobra.Command {
	var edit editFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				values, err := edit.values(cmd, rt)
				if err != nil {
					return err
				}
				var dto organization.CreateDTO
				if err := decodeAssignments(&dto, values); err != nil {
					return withCode(exitUsage, err)
				}
				svc := rt.organizationService()
				form := recordform.New[organization.Organization](rt.notifier, nil)
				row, err := form.Create(cmd.Context(), &dto, func(ctx context.Context) (organization.Organization, int, error) {
					return svc.Create(ctx, &dto)
				})
				if err != nil {
					return formFailure(cmd, form, err)
				}
				return r.printRecord(rt, row)
			})
		},
	}
	edit.register(cmd, false)
	return cmd
}

func editOrganization(ctx context.Context, rt *runtime, id int, values url.Values) (recordform.Validatable, saveFunc[organization.Organization], error) {
	svc := rt.organizationService()
	current, err := svc.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	before := organization.NewUpdateDTO(current)
	after, err := cloneDTO(before)
	if err != nil {
		return nil, nil, err
	}
	if err := decodeAssignments(&after, values); err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	return &after, func(ctx context.Context) (organization.Organization, int, error) {
		return svc.Update(ctx, id, &before, &after)
	}, nil
}

func newOrganizationsCmd(root *rootOptions) *cobra.Command {
	r := organizationsResource()
	cmd := &cobra.Command{
		Use:     "organizations",
		Aliases: []string{"org", "orgs"},
		Short:   "Organizations table",
	}
	cmd.AddCommand(newListCmd(root, r, "list", "List organizations", organizationsFetcher))
	cmd.AddCommand(newBrowseCmd(root, r, organizationsFetcher))
	cmd.AddCommand(newGetCmd(root, r, func(rt *runtime) func(context.Context, int) (organization.Organization, error) {
		return rt.organizationService().GetByID
	}))
	cmd.AddCommand(newOrganizationCreateCmd(root, r))
	cmd.AddCommand(newUpdateCmd(root, r, "Change fields of an organization; only changed fields are sent", false))
	cmd.AddCommand(newDeleteCmd(root, r))
	cmd.AddCommand(newExportCmd(root, r, organizationsFetcher))
	cmd.AddCommand(newLookupCmd(root, "Suggest organizations by short name", func(rt *runtime) func(context.Context, string, int) ([]lookup.Option, error) {
		return rt.organizationService().Options
	}))
	return cmd
}
