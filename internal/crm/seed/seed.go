// Package seed fills an empty database with demo data by driving the real
// services, so every seeded row carries its activity timeline.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/amoylab/nextcrm/internal/crm/admission"
	"github.com/amoylab/nextcrm/internal/crm/application"
	"github.com/amoylab/nextcrm/internal/crm/lead"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/internal/crm/student"
	"github.com/amoylab/nextcrm/internal/crm/user"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

var (
	countries    = []string{"us", "uk", "ca", "au", "de", "ie", "nz"}
	programs     = []string{"bachelors", "masters", "mba", "foundation", "phd"}
	sources      = []string{"website", "walk_in", "referral", "facebook", "partner", "event"}
	studyLevels  = []string{"undergraduate", "postgraduate", "diploma"}
	universities = []string{
		"University of Toronto", "University of Melbourne", "King's College London",
		"Trinity College Dublin", "TU Munich", "University of Auckland", "Arizona State University",
	}
	decisions   = []cnst.Decision{cnst.DecisionAccepted, cnst.DecisionRejected, cnst.DecisionWaitlisted, cnst.DecisionPending}
	lostReasons = []string{"Chose another agency", "Budget", "Not reachable", "Postponed studies"}
)

// Org creates the organisation tree users hang off
type Org interface {
	CreateRegion(ctx context.Context, region *database.Region) error
	CreateBranch(ctx context.Context, branch *database.Branch) error
}

type Services struct {
	Users        *user.Service
	Leads        *lead.Service
	Students     *student.Service
	Applications *application.Service
	Admissions   *admission.Service
}

type Options struct {
	Seed                int64
	Regions             int
	BranchesPerRegion   int
	CounselorsPerBranch int
	Leads               int
	// every ConvertEvery-th lead becomes a student, every LoseEvery-th is lost
	ConvertEvery int
	LoseEvery    int
}

func (o *Options) applyDefaults() {
	if o.Regions <= 0 {
		o.Regions = 2
	}
	if o.BranchesPerRegion <= 0 {
		o.BranchesPerRegion = 2
	}
	if o.CounselorsPerBranch <= 0 {
		o.CounselorsPerBranch = 2
	}
	if o.Leads <= 0 {
		o.Leads = 40
	}
	if o.ConvertEvery <= 0 {
		o.ConvertEvery = 4
	}
	if o.LoseEvery <= 0 {
		o.LoseEvery = 5
	}
}

// Summary counts what a run created
type Summary struct {
	Regions      int `json:"regions"`
	Branches     int `json:"branches"`
	Users        int `json:"users"`
	Leads        int `json:"leads"`
	LostLeads    int `json:"lostLeads"`
	Students     int `json:"students"`
	Applications int `json:"applications"`
	Admissions   int `json:"admissions"`
}

// seeder is the system identity demo data is attributed to
var seeder = scope.Caller{Name: "Seeder", Role: string(cnst.RoleSuperAdmin)}

type run struct {
	org     Org
	svc     Services
	opts    Options
	faker   *gofakeit.Faker
	logger  *zap.Logger
	summary Summary
}

// Run seeds an empty database. Rerunning against seeded data fails on the
// unique region names.
func Run(ctx context.Context, org Org, svc Services, opts Options, logger *zap.Logger) (*Summary, error) {
	opts.applyDefaults()
	r := &run{
		org:    org,
		svc:    svc,
		opts:   opts,
		faker:  gofakeit.New(opts.Seed),
		logger: logger.Named("seed"),
	}

	counselors, err := r.organisation(ctx)
	if err != nil {
		return nil, err
	}
	for i := 0; i < opts.Leads; i++ {
		if err := r.lead(ctx, i, counselors[i%len(counselors)]); err != nil {
			return nil, fmt.Errorf("seed lead %d: %w", i, err)
		}
	}

	r.logger.Info("seeded demo data",
		zap.Int("users", r.summary.Users),
		zap.Int("leads", r.summary.Leads),
		zap.Int("students", r.summary.Students))
	return &r.summary, nil
}

// organisation creates regions, branches and their staff, returning the
// counselors leads are spread across
func (r *run) organisation(ctx context.Context) ([]scope.Caller, error) {
	var counselors []scope.Caller
	for ri := 0; ri < r.opts.Regions; ri++ {
		region := &database.Region{Name: fmt.Sprintf("%s Region %d", r.faker.State(), ri+1)}
		if err := r.org.CreateRegion(ctx, region); err != nil {
			return nil, fmt.Errorf("create region: %w", err)
		}
		r.summary.Regions++

		for bi := 0; bi < r.opts.BranchesPerRegion; bi++ {
			branch := &database.Branch{Name: r.faker.City() + " Office", RegionID: region.ID}
			if err := r.org.CreateBranch(ctx, branch); err != nil {
				return nil, fmt.Errorf("create branch: %w", err)
			}
			r.summary.Branches++

			if _, err := r.staff(ctx, cnst.RoleBranchManager, branch.ID); err != nil {
				return nil, err
			}
			for ci := 0; ci < r.opts.CounselorsPerBranch; ci++ {
				u, err := r.staff(ctx, cnst.RoleCounselor, branch.ID)
				if err != nil {
					return nil, err
				}
				counselors = append(counselors, user.Caller(u))
			}
		}
	}
	return counselors, nil
}

func (r *run) staff(ctx context.Context, role cnst.Role, branchID string) (*database.User, error) {
	first, last := r.faker.FirstName(), r.faker.LastName()
	u, _, err := r.svc.Users.Create(ctx, seeder, &dto.CreateUserRequest{
		Email:       fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), r.summary.Users+1),
		FirstName:   first,
		LastName:    last,
		Role:        string(role),
		BranchID:    branchID,
		PhoneNumber: r.faker.Phone(),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", role, err)
	}
	r.summary.Users++
	return u, nil
}

func (r *run) lead(ctx context.Context, i int, counselor scope.Caller) error {
	name := r.faker.Name()
	l, err := r.svc.Leads.Create(ctx, counselor, &dto.CreateLeadRequest{
		Name:       name,
		Email:      fmt.Sprintf("lead%d.%s@example.com", i+1, strings.ToLower(r.faker.LastName())),
		Phone:      fmt.Sprintf("+1555%07d", i+1),
		City:       r.faker.City(),
		Country:    types.StringList{r.faker.RandomString(countries)},
		Program:    types.StringList{r.faker.RandomString(programs)},
		Source:     r.faker.RandomString(sources),
		StudyLevel: r.faker.RandomString(studyLevels),
	})
	if err != nil {
		return err
	}
	r.summary.Leads++

	switch {
	case (i+1)%r.opts.ConvertEvery == 0:
		return r.convert(ctx, l, counselor)
	case (i+1)%r.opts.LoseEvery == 0:
		lost := types.Flag(true)
		reason := r.faker.RandomString(lostReasons)
		if _, err := r.svc.Leads.Update(ctx, counselor, l.ID, &dto.UpdateLeadRequest{IsLost: &lost, LostReason: &reason}); err != nil {
			return err
		}
		r.summary.LostLeads++
	}
	return nil
}

// convert turns l into a student with one application and its decision
func (r *run) convert(ctx context.Context, l *database.Lead, counselor scope.Caller) error {
	conv, err := r.svc.Students.ConvertFromLead(ctx, counselor, l.ID, &dto.CreateStudentRequest{
		Intake: fmt.Sprintf("%d-%s", r.faker.Number(2026, 2028), r.faker.RandomString([]string{"spring", "fall"})),
	})
	if err != nil {
		return err
	}
	r.summary.Students++

	app, err := r.svc.Applications.Create(ctx, counselor, &dto.CreateApplicationRequest{
		StudentID:  conv.Student.ID,
		University: r.faker.RandomString(universities),
		Program:    l.Program.Join(""),
		Country:    l.Country.Join(""),
		Intake:     conv.Student.Intake,
	})
	if err != nil {
		return err
	}
	r.summary.Applications++

	decision := decisions[r.faker.Number(0, len(decisions)-1)]
	req := &dto.CreateAdmissionRequest{ApplicationID: app.ID, Decision: string(decision)}
	if decision == cnst.DecisionAccepted {
		req.TuitionFee = float64(r.faker.Number(15, 45) * 1000)
		req.ScholarshipAmount = float64(r.faker.Number(0, 5) * 1000)
	}
	if _, err := r.svc.Admissions.Create(ctx, counselor, req); err != nil {
		return err
	}
	r.summary.Admissions++
	return nil
}
