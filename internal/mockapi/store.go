package mockapi

import (
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/types"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
)

var employeeFields = []string{
	"id", "first_name", "last_name", "middle_name", "phone", "age", "email",
	"date_of_birth", "registration_date", "sex", "organization",
	"organization__short_name", "organization__full_name",
}

var organizationFields = []string{
	"id", "full_name", "short_name", "registration_date", "inn", "kpp", "ogrn",
	"okved_code", "okved_name",
}

var taskFields = []string{
	"id", "summary", "description", "assigned_to", "assigned_to__last_name",
	"assigned_to__first_name", "assigned_by", "assigned_by__last_name",
	"dead_line", "date_of_issue", "comment", "done",
}

type account struct {
	user.Account
	hash []byte
}

// Store holds every mock collection. Joined values such as an employee's
// organization name are resolved when a record is rendered.
type Store struct {
	Employees     *Collection[employee.Employee]
	Organizations *Collection[organization.Organization]
	Tasks         *Collection[task.Task]
	Attachments   *Collection[types.Attachment]

	mu       sync.RWMutex
	accounts map[string]*account
	tokens   map[string]string
	nextUser int
}

func NewStore() *Store {
	s := &Store{
		Organizations: NewCollection(organizationFields, flattenOrganization),
		Attachments:   NewCollection([]string{"id", "file_name"}, flattenAttachment),
		accounts:      map[string]*account{},
		tokens:        map[string]string{},
	}
	s.Employees = NewCollection(employeeFields, s.flattenEmployee)
	s.Tasks = NewCollection(taskFields, s.flattenTask)
	return s
}

func dateValue(d types.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func flattenOrganization(o organization.Organization) map[string]any {
	return map[string]any{
		"id":                o.ID,
		"full_name":         o.FullName,
		"short_name":        o.ShortName,
		"registration_date": dateValue(o.RegistrationDate),
		"inn":               o.INN,
		"kpp":               o.KPP,
		"ogrn":              o.OGRN,
		"okved_code":        o.OKVEDCode,
		"okved_name":        o.OKVEDName,
	}
}

func flattenAttachment(a types.Attachment) map[string]any {
	return map[string]any{"id": a.ID, "file_name": a.FileName}
}

func (s *Store) flattenEmployee(e employee.Employee) map[string]any {
	out := map[string]any{
		"id":                e.ID,
		"first_name":        e.FirstName,
		"last_name":         e.LastName,
		"middle_name":       e.MiddleName,
		"phone":             e.Phone,
		"age":               e.Age,
		"email":             e.Email,
		"date_of_birth":     dateValue(e.DateOfBirth),
		"registration_date": dateValue(e.RegistrationDate),
		"sex":               string(e.Sex),
	}
	if e.Organization != nil {
		out["organization"] = *e.Organization
		if o, ok := s.Organizations.Get(*e.Organization); ok {
			out["organization__short_name"] = o.ShortName
			out["organization__full_name"] = o.FullName
		}
	}
	return out
}

func (s *Store) flattenTask(t task.Task) map[string]any {
	out := map[string]any{
		"id":            t.ID,
		"summary":       t.Summary,
		"description":   t.Description,
		"dead_line":     dateValue(t.DeadLine),
		"date_of_issue": dateValue(t.DateOfIssue),
		"comment":       t.Comment,
		"done":          t.Done,
	}
	if p := s.person(t.AssignedTo); p != nil {
		out["assigned_to"] = p.ID
		out["assigned_to__last_name"] = p.LastName
		out["assigned_to__first_name"] = p.FirstName
	}
	if t.AssignedBy != nil {
		out["assigned_by"] = t.AssignedBy.ID
		out["assigned_by__last_name"] = t.AssignedBy.LastName
	}
	return out
}

// person expands an employee reference from the current employee rows.
func (s *Store) person(ref *task.Person) *task.Person {
	if ref == nil || ref.ID == 0 {
		return nil
	}
	e, ok := s.Employees.Get(ref.ID)
	if !ok {
		return &task.Person{ID: ref.ID}
	}
	return &task.Person{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName}
}

func (s *Store) attachment(id *int) *types.Attachment {
	if id == nil {
		return nil
	}
	a, ok := s.Attachments.Get(*id)
	if !ok {
		return nil
	}
	return &a
}

// RenderEmployee fills the organization name.
func (s *Store) RenderEmployee(e employee.Employee) employee.Employee {
	e.OrganizationName = ""
	if e.Organization != nil {
		if o, ok := s.Organizations.Get(*e.Organization); ok {
			e.OrganizationName = o.DisplayName()
		}
	}
	return e
}

// RenderOrganization lists the employees working there.
func (s *Store) RenderOrganization(o organization.Organization) organization.Organization {
	members := []organization.Member{}
	for _, e := range s.Employees.All() {
		if e.Organization != nil && *e.Organization == o.ID {
			members = append(members, organization.Member{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName})
		}
	}
	o.Employees = members
	return o
}

func (s *Store) RenderTask(t task.Task) task.Task {
	t.AssignedTo = s.person(t.AssignedTo)
	return t
}

// Register creates an account. Passwords are kept as bcrypt hashes.
func (s *Store) Register(dto user.SignUpDTO, cost int) (user.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), cost)
	if err != nil {
		return user.Account{}, errors.Wrap(err, "hash password")
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return user.Account{}, ErrEmailTaken
	}
	s.nextUser++
	acc := &account{
		Account: user.Account{
			ID:        s.nextUser,
			FirstName: dto.FirstName,
			LastName:  dto.LastName,
			Email:     email,
			Mailing:   dto.Mailing,
		},
		hash: hash,
	}
	s.accounts[email] = acc
	return acc.Account, nil
}

// Login checks the credentials and issues a fresh token.
func (s *Store) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	acc, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()
	return token, nil
}

func (s *Store) Logout(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// AccountByToken resolves the signed-in account.
func (s *Store) AccountByToken(token string) (user.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.tokens[token]
	if !ok {
		return user.Account{}, false
	}
	return s.accounts[email].Account, true
}
