package services

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/lookup"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

const optionsWindow = 500

var ErrUnknownOrganization = serrors.NewError("ORG_UNKNOWN", "unknown organization", "")

type OrganizationService struct {
	repo      organization.Repository
	publisher eventbus.EventBus
	log       *logrus.Entry

	mu      sync.Mutex
	options *lookup.Options
}

func NewOrganizationService(repo organization.Repository, publisher eventbus.EventBus, logger *logrus.Logger) *OrganizationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OrganizationService{
		repo:      repo,
		publisher: publisher,
		log:       logger.WithField("component", "org.service"),
	}
}

func (s *OrganizationService) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[organization.Organization], error) {
	return s.repo.Fetch(ctx, req)
}

func (s *OrganizationService) GetByID(ctx context.Context, id int) (organization.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrganizationService) Create(ctx context.Context, data *organization.CreateDTO) (organization.Organization, int, error) {
	if errs, ok := data.Ok(); !ok {
		return organization.Organization{}, 0, errs
	}
	created, status, err := s.repo.Create(ctx, *data)
	if err != nil {
		return organization.Organization{}, status, err
	}
	s.publisher.Publish(organization.NewCreatedEvent(*data, created))
	return created, status, nil
}

func (s *OrganizationService) Update(ctx context.Context, id int, before, after *organization.UpdateDTO) (organization.Organization, int, error) {
	if errs, ok := after.Ok(); !ok {
		return organization.Organization{}, 0, errs
	}
	patch, err := recordform.MergePatch(before, after)
	if err != nil {
		return organization.Organization{}, 0, err
	}
	if recordform.EmptyPatch(patch) {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return organization.Organization{}, 0, err
		}
		return current, http.StatusOK, nil
	}
	updated, status, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return organization.Organization{}, status, err
	}
	s.publisher.Publish(organization.NewUpdatedEvent(id, patch, updated))
	return updated, status, nil
}

func (s *OrganizationService) Delete(ctx context.Context, id int) (int, error) {
	status, err := s.repo.Delete(ctx, id)
	if err != nil {
		return status, err
	}
	s.publisher.Publish(organization.NewDeletedEvent(id))
	return status, nil
}

func (s *OrganizationService) cachedOptions(ctx context.Context) (*lookup.Options, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.options != nil {
		return s.options, nil
	}
	res, err := s.repo.Fetch(ctx, remotetable.Request{Limit: optionsWindow, Ordering: "short_name"})
	if err != nil {
		return nil, errors.Wrap(err, "list organizations")
	}
	opts := lookup.NewOptions()
	for _, o := range res.Rows {
		opts.Add(lookup.Option{Value: strconv.Itoa(o.ID), Label: o.DisplayName()})
	}
	s.options = opts
	return opts, nil
}

// Options ranks organizations for the employee form's organization picker.
// The option list is cached until InvalidateOptions is called.
func (s *OrganizationService) Options(ctx context.Context, q string, limit int) ([]lookup.Option, error) {
	opts, err := s.cachedOptions(ctx)
	if err != nil {
		return nil, err
	}
	return opts.Find(q, limit), nil
}

// Resolve maps an organization id or exact name to its id.
func (s *OrganizationService) Resolve(ctx context.Context, ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}
	opts, err := s.cachedOptions(ctx)
	if err != nil {
		return 0, err
	}
	opt, ok := opts.Exact(ref)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownOrganization, "%q", ref)
	}
	return strconv.Atoi(opt.Value)
}

func (s *OrganizationService) InvalidateOptions(reason string) {
	s.mu.Lock()
	s.options = nil
	s.mu.Unlock()
	s.log.WithField("reason", reason).Debug("organization options invalidated")
}
