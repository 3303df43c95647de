// Package recordform implements the create/edit/delete dialog shared by
// every resource.
package recordform

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

// Validatable is implemented by DTOs that check themselves before saving.
type Validatable interface {
	Ok() (serrors.ValidationErrors, bool)
}

// MutationFunc receives every successful save or delete.
type MutationFunc[T any] func(ctx context.Context, m remotetable.Mutation[T])

// ToTable adapts a table controller as the mutation callback.
func ToTable[T any](c *remotetable.Controller[T]) MutationFunc[T] {
	return func(ctx context.Context, m remotetable.Mutation[T]) {
		c.ApplyMutation(ctx, m)
	}
}

// Form tracks field errors and whether the dialog is still open.
type Form[T any] struct {
	notifier   notification.Notifier
	onMutation MutationFunc[T]

	mu          sync.Mutex
	open        bool
	fieldErrors map[string]string
}

func New[T any](notifier notification.Notifier, onMutation MutationFunc[T]) *Form[T] {
	if notifier == nil {
		notifier = notification.Discard
	}
	return &Form[T]{notifier: notifier, onMutation: onMutation, open: true}
}

func (f *Form[T]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// FieldErrors returns a copy of the current field error flags.
func (f *Form[T]) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// Reopen clears errors for another attempt.
func (f *Form[T]) Reopen() {
	f.mu.Lock()
	f.open = true
	f.fieldErrors = nil
	f.mu.Unlock()
}

// Create validates dto locally, then runs save.
func (f *Form[T]) Create(ctx context.Context, dto Validatable, save func(context.Context) (T, int, error)) (T, error) {
	return f.submit(ctx, remotetable.Created, dto, save)
}

func (f *Form[T]) Update(ctx context.Context, dto Validatable, save func(context.Context) (T, int, error)) (T, error) {
	return f.submit(ctx, remotetable.Updated, dto, save)
}

func (f *Form[T]) submit(ctx context.Context, kind remotetable.MutationKind, dto Validatable, save func(context.Context) (T, int, error)) (T, error) {
	var zero T
	if dto != nil {
		if errs, ok := dto.Ok(); !ok {
			f.fail(errs, nil)
			return zero, errs
		}
	}
	row, status, err := save(ctx)
	if err != nil {
		f.fail(nil, err)
		return zero, err
	}
	f.succeed(ctx, status, remotetable.Mutation[T]{Kind: kind, Row: row})
	return row, nil
}

// Delete runs del and reports the removal of the row identified by key.
func (f *Form[T]) Delete(ctx context.Context, key string, del func(context.Context) (int, error)) error {
	status, err := del(ctx)
	if err != nil {
		f.fail(nil, err)
		return err
	}
	f.succeed(ctx, status, remotetable.Mutation[T]{Kind: remotetable.Deleted, Key: key})
	return nil
}

func (f *Form[T]) fail(local serrors.ValidationErrors, err error) {
	f.mu.Lock()
	f.open = true
	switch {
	case len(local) > 0:
		f.fieldErrors = map[string]string(local)
	case apiclient.IsKind(err, apiclient.KindValidation):
		f.fieldErrors = apiclient.FieldErrors(err)
	default:
		f.fieldErrors = nil
	}
	f.mu.Unlock()

	if err != nil {
		f.notifier.OpenNotification(apiclient.UserMessage(err), notification.Error)
	}
}

func (f *Form[T]) succeed(ctx context.Context, status int, m remotetable.Mutation[T]) {
	f.mu.Lock()
	f.open = false
	f.fieldErrors = nil
	f.mu.Unlock()

	msg, ok := apiclient.StatusMessage(status)
	if !ok {
		msg, _ = apiclient.StatusMessage(http.StatusOK)
	}
	f.notifier.OpenNotification(msg, notification.Success)
	if f.onMutation != nil {
		f.onMutation(ctx, m)
	}
}

// MergePatch returns the JSON merge patch turning before into after.
func MergePatch(before, after any) (json.RawMessage, error) {
	a, err := json.Marshal(before)
	if err != nil {
		return nil, errors.Wrap(err, "marshal original")
	}
	b, err := json.Marshal(after)
	if err != nil {
		return nil, errors.Wrap(err, "marshal modified")
	}
	patch, err := jsonpatch.CreateMergePatch(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "merge patch")
	}
	return patch, nil
}

// EmptyPatch reports whether patch changes nothing.
func EmptyPatch(patch json.RawMessage) bool {
	var m map[string]any
	return json.Unmarshal(patch, &m) == nil && len(m) == 0
}
