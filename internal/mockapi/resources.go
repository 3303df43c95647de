package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/httpapi"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

// errInvalid carries field errors out of a Collection.Update callback.
type errInvalid serrors.ValidationErrors

func (e errInvalid) Error() string {
	return serrors.ValidationErrors(e).Error()
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func writeNotFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, "not found")
}

func writeUpdateError(w http.ResponseWriter, err error) {
	var invalid errInvalid
	if errors.As(err, &invalid) {
		_ = httpapi.WriteValidationError(w, invalid)
		return
	}
	writeMalformed(w)
}

func list[T any](c *Collection[T], render func(T) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, errs := ParseQuery(r.URL.Query(), c.Fields())
		if errs != nil {
			_ = httpapi.WriteValidationError(w, errs)
			return
		}
		rows, total := c.List(spec)
		for i := range rows {
			rows[i] = render(rows[i])
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, apiclient.Page[T]{Results: rows, Count: total})
	}
}

func get[T any](c *Collection[T], render func(T) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		row, ok := c.Get(id)
		if !ok {
			writeNotFound(w)
			return
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, render(row))
	}
}

func remove[T any](c *Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok || !c.Delete(id) {
			writeNotFound(w)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// patch merges the request body into the editable document of a row, then
// decodes and applies the result.
func patch[T, D any](c *Collection[T], render func(T) T, doc func(T) D, apply func(T, D) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeNotFound(w)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeMalformed(w)
			return
		}
		row, found, err := c.Update(id, func(cur T) (T, error) {
			original, err := json.Marshal(doc(cur))
			if err != nil {
				return cur, err
			}
			merged, err := jsonpatch.MergePatch(original, body)
			if err != nil {
				return cur, err
			}
			var next D
			if err := json.Unmarshal(merged, &next); err != nil {
				return cur, err
			}
			return apply(cur, next)
		})
		if !found {
			writeNotFound(w)
			return
		}
		if err != nil {
			writeUpdateError(w, err)
			return
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, render(row))
	}
}

func (s *Server) checkOrganization(errs serrors.ValidationErrors, id *int) serrors.ValidationErrors {
	if id == nil {
		return errs
	}
	if _, ok := s.store.Organizations.Get(*id); !ok {
		if errs == nil {
			errs = serrors.ValidationErrors{}
		}
		errs["organization"] = "organization does not exist"
	}
	return errs
}

func (s *Server) checkAttachment(errs serrors.ValidationErrors, id *int) serrors.ValidationErrors {
	if id == nil {
		return errs
	}
	if _, ok := s.store.Attachments.Get(*id); !ok {
		if errs == nil {
			errs = serrors.ValidationErrors{}
		}
		errs["attachment"] = "attachment does not exist"
	}
	return errs
}

func (s *Server) checkAssignee(errs serrors.ValidationErrors, id int) serrors.ValidationErrors {
	if id == 0 {
		return errs
	}
	if _, ok := s.store.Employees.Get(id); !ok {
		if errs == nil {
			errs = serrors.ValidationErrors{}
		}
		errs["assigned_to"] = "employee does not exist"
	}
	return errs
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var dto employee.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMalformed(w)
		return
	}
	errs, _ := dto.Ok()
	errs = s.checkOrganization(errs, dto.Organization)
	errs = s.checkAttachment(errs, dto.Attachment)
	if len(errs) > 0 {
		_ = httpapi.WriteValidationError(w, errs)
		return
	}
	row := s.store.Employees.Insert(func(id int) employee.Employee {
		return s.applyEmployee(employee.Employee{ID: id, RegistrationDate: s.today()}, employee.UpdateDTO(dto))
	})
	_ = httpapi.WriteJSON(w, http.StatusCreated, s.store.RenderEmployee(row))
}

func (s *Server) applyEmployee(e employee.Employee, d employee.UpdateDTO) employee.Employee {
	e.FirstName = d.FirstName
	e.LastName = d.LastName
	e.MiddleName = d.MiddleName
	e.Phone = d.Phone
	e.Age = d.Age
	e.Email = d.Email
	e.DateOfBirth = d.DateOfBirth
	e.Sex = d.Sex
	e.Organization = d.Organization
	e.Attachment = s.store.attachment(d.Attachment)
	return e
}

func (s *Server) patchEmployee() http.HandlerFunc {
	return patch(s.store.Employees, s.store.RenderEmployee, employee.NewUpdateDTO,
		func(cur employee.Employee, d employee.UpdateDTO) (employee.Employee, error) {
			errs, _ := d.Ok()
			errs = s.checkOrganization(errs, d.Organization)
			errs = s.checkAttachment(errs, d.Attachment)
			if len(errs) > 0 {
				return cur, errInvalid(errs)
			}
			return s.applyEmployee(cur, d), nil
		})
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var dto organization.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMalformed(w)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteValidationError(w, errs)
		return
	}
	row := s.store.Organizations.Insert(func(id int) organization.Organization {
		return applyOrganization(organization.Organization{ID: id}, organization.UpdateDTO(dto))
	})
	_ = httpapi.WriteJSON(w, http.StatusCreated, s.store.RenderOrganization(row))
}

func applyOrganization(o organization.Organization, d organization.UpdateDTO) organization.Organization {
	o.FullName = d.FullName
	o.ShortName = d.ShortName
	o.RegistrationDate = d.RegistrationDate
	o.INN = d.INN
	o.KPP = d.KPP
	o.OGRN = d.OGRN
	o.OKVEDCode = d.OKVEDCode
	o.OKVEDName = d.OKVEDName
	return o
}

func (s *Server) patchOrganization() http.HandlerFunc {
	return patch(s.store.Organizations, s.store.RenderOrganization, organization.NewUpdateDTO,
		func(cur organization.Organization, d organization.UpdateDTO) (organization.Organization, error) {
			if errs, ok := d.Ok(); !ok {
				return cur, errInvalid(errs)
			}
			return applyOrganization(cur, d), nil
		})
}

// taskDoc is the editable document of a task; done is only changed through
// PATCH.
type taskDoc struct {
	task.UpdateDTO
	Done bool `json:"done"`
}

func newTaskDoc(t task.Task) taskDoc {
	return taskDoc{UpdateDTO: task.NewUpdateDTO(t), Done: t.Done}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var dto task.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMalformed(w)
		return
	}
	errs, _ := dto.Ok()
	errs = s.checkAssignee(errs, dto.AssignedTo)
	errs = s.checkAttachment(errs, dto.Attachment)
	if len(errs) > 0 {
		_ = httpapi.WriteValidationError(w, errs)
		return
	}
	var by *task.Person
	if acc, ok := currentAccount(r.Context()); ok {
		by = &task.Person{ID: acc.ID, FirstName: acc.FirstName, LastName: acc.LastName}
	}
	row := s.store.Tasks.Insert(func(id int) task.Task {
		t := task.Task{ID: id, AssignedBy: by, DateOfIssue: s.today()}
		return s.applyTask(t, taskDoc{UpdateDTO: task.UpdateDTO(dto)})
	})
	_ = httpapi.WriteJSON(w, http.StatusCreated, s.store.RenderTask(row))
}

func (s *Server) applyTask(t task.Task, d taskDoc) task.Task {
	t.Summary = d.Summary
	t.Description = d.Description
	t.AssignedTo = &task.Person{ID: d.AssignedTo}
	t.DeadLine = d.DeadLine
	t.Comment = d.Comment
	t.Attachment = s.store.attachment(d.Attachment)
	t.Done = d.Done
	return t
}

func (s *Server) patchTask() http.HandlerFunc {
	return patch(s.store.Tasks, s.store.RenderTask, newTaskDoc,
		func(cur task.Task, d taskDoc) (task.Task, error) {
			errs, _ := d.Ok()
			errs = s.checkAssignee(errs, d.AssignedTo)
			errs = s.checkAttachment(errs, d.Attachment)
			if len(errs) > 0 {
				return cur, errInvalid(errs)
			}
			return s.applyTask(cur, d), nil
		})
}
