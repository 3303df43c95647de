package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/types"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin12345"
)

type SeedOptions struct {
	Employees     int
	Organizations int
	Tasks         int
	// Today is the registration and issue date of seeded rows.
	Today types.Date
}

func (o *SeedOptions) setDefaults() {
	if o.Organizations == 0 {
		o.Organizations = 5
	}
	if o.Tasks == 0 {
		o.Tasks = 12
	}
	if o.Today.IsZero() {
		o.Today = types.NewDate(2024, time.March, 1)
	}
}

var (
	seedFirstNames  = []string{"Anna", "Boris", "Vera", "Gleb", "Daria", "Egor", "Zoya", "Ivan", "Kira", "Lev", "Maria", "Nikita"}
	seedLastNames   = []string{"Ivanova", "Petrov", "Sidorova", "Smirnov", "Kuznetsova", "Popov", "Volkova", "Sokolov", "Lebedeva", "Kozlov", "Novikova"}
	seedMiddleNames = []string{"Sergeevna", "Olegovich", "Pavlovna", "Igorevich", ""}
	seedOrgNames    = []string{"Aurora", "Baikal", "Kedr", "Polar Star", "Volga", "Ural", "Sever"}
	seedSummaries   = []string{"Prepare quarterly report", "Review contract", "Update staff records", "Order equipment", "Plan onboarding", "Audit access rights"}
)

// Seed fills the store with deterministic rows and the admin account.
func Seed(s *Store, opts SeedOptions, cost int) error {
	opts.setDefaults()

	if _, err := s.Register(user.SignUpDTO{
		FirstName: "Admin",
		LastName:  "Console",
		Email:     AdminEmail,
		Password:  AdminPassword,
	}, cost); err != nil {
		return err
	}

	for i := 0; i < opts.Organizations; i++ {
		name := seedOrgNames[i%len(seedOrgNames)]
		if i >= len(seedOrgNames) {
			name = fmt.Sprintf("%s %d", name, i/len(seedOrgNames)+1)
		}
		s.Organizations.Insert(func(id int) organization.Organization {
			return organization.Organization{
				ID:               id,
				FullName:         "LLC " + name,
				ShortName:        name,
				RegistrationDate: types.NewDate(2010+i%10, time.Month(i%12+1), i%27+1),
				INN:              fmt.Sprintf("77%08d", 1000+id),
				KPP:              fmt.Sprintf("77%07d", 100+id),
				OGRN:             fmt.Sprintf("10277%08d", 5000+id),
				OKVEDCode:        fmt.Sprintf("62.0%d", id%10),
				OKVEDName:        "Computer programming",
			}
		})
	}

	for i := 0; i < opts.Employees; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[i%len(seedLastNames)]
		sex := employee.Male
		if strings.HasSuffix(last, "a") {
			sex = employee.Female
		}
		age := 20 + i%40
		var org *int
		if opts.Organizations > 0 && i%7 != 6 {
			id := i%opts.Organizations + 1
			org = &id
		}
		s.Employees.Insert(func(id int) employee.Employee {
			return employee.Employee{
				ID:               id,
				FirstName:        first,
				LastName:         last,
				MiddleName:       seedMiddleNames[i%len(seedMiddleNames)],
				Phone:            fmt.Sprintf("+7900%07d", id),
				Age:              age,
				Email:            fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), id),
				DateOfBirth:      types.NewDate(opts.Today.Year()-age, time.Month(i%12+1), i%28+1),
				RegistrationDate: opts.Today,
				Sex:              sex,
				Organization:     org,
			}
		})
	}

	admin := &task.Person{FirstName: "Admin", LastName: "Console"}
	if acc, ok := s.accountByEmail(AdminEmail); ok {
		admin.ID = acc.ID
	}
	employees := s.Employees.Len()
	for i := 0; i < opts.Tasks && employees > 0; i++ {
		assignee := i%employees + 1
		s.Tasks.Insert(func(id int) task.Task {
			return task.Task{
				ID:          id,
				Summary:     seedSummaries[i%len(seedSummaries)],
				AssignedTo:  &task.Person{ID: assignee},
				AssignedBy:  admin,
				DateOfIssue: opts.Today,
				DeadLine:    types.Date{Time: opts.Today.AddDate(0, 0, 7+i)},
				Done:        i%3 == 0,
			}
		})
	}
	return nil
}

func (s *Store) accountByEmail(email string) (user.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[email]
	if !ok {
		return user.Account{}, false
	}
	return acc.Account, true
}
