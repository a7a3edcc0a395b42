package registration_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/catalog"
	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

var (
	student  = user.Principal{ID: "stud-1", UserID: "NSR/0001/17", Role: user.RoleStudent}
	depHead  = user.Principal{ID: "head-1", Role: user.RoleDepHead}
	collDean = user.Principal{ID: "dean-1", Role: user.RoleDean}
	admin    = user.Principal{ID: "admin-1", Role: user.RoleAdmin}
)

func newTestService(t *testing.T) *registration.Service {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	catSvc := catalog.NewService(inmemdb.NewCatalogRepository(db), validate)
	for _, nc := range []catalog.NewCourse{
		{Code: "CS101", Name: "Intro to Programming", Department: "Computer Science", CreditHours: 4, Semester: "1", Year: "1"},
		{Code: "MA102", Name: "Calculus I", Department: "Computer Science", CreditHours: 3, Semester: "1", Year: "1"},
	} {
		_, err := catSvc.CreateCourse(context.Background(), admin, nc)
		require.NoError(t, err)
	}

	return registration.NewService(inmemdb.NewRegistrationRepository(db), catSvc, validate)
}

func newRegistration(semester string) registration.NewRegistration {
	return registration.NewRegistration{
		Semester:     semester,
		AcademicYear: "2017",
		CourseCodes:  []string{"CS101", "MA102"},
	}
}

func TestService_Register(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// first semester is approved without sign-off
	reg, err := svc.Register(ctx, student, newRegistration("1"))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusApproved, reg.Status)

	// second semester starts the pipeline
	reg2, err := svc.Register(ctx, student, newRegistration("2"))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPending, reg2.Status)
	assert.Equal(t, workflow.Pending, reg2.DepHeadApproval.Status)
	assert.Equal(t, workflow.Pending, reg2.DeanApproval.Status)

	// one registration per (student, semester, year)
	_, err = svc.Register(ctx, student, newRegistration("2"))
	assert.True(t, core.IsConflict(err))

	// only students register
	_, err = svc.Register(ctx, depHead, newRegistration("2"))
	assert.True(t, core.IsAuthorization(err))

	// every course must exist in the catalog
	bad := newRegistration("2")
	bad.AcademicYear = "2018"
	bad.CourseCodes = append(bad.CourseCodes, "XX999")
	_, err = svc.Register(ctx, student, bad)
	assert.True(t, core.IsNotFound(err))

	// course lines are denormalized from the catalog
	require.Len(t, reg.Courses, 2)
	assert.Equal(t, "Intro to Programming", reg.Courses[0].CourseName)
	assert.Equal(t, 4.0, reg.Courses[0].CreditHours)

	mine, err := svc.MyRegistrations(ctx, student)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestService_Decide_approvalPipeline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, student, newRegistration("2"))
	require.NoError(t, err)

	// awaiting the department head first
	pending, err := svc.PendingDepHead(ctx, depHead)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	deanPending, err := svc.PendingDean(ctx, collDean)
	require.NoError(t, err)
	assert.Empty(t, deanPending)

	// students cannot decide stages
	_, err = svc.Decide(ctx, student, reg.ID, registration.StageDepHead, registration.StageRequest{Status: "approved"})
	assert.True(t, core.IsAuthorization(err))

	reg, err = svc.Decide(ctx, depHead, reg.ID, registration.StageDepHead, registration.StageRequest{Status: "approved", Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, workflow.Approved, reg.DepHeadApproval.Status)
	assert.Equal(t, depHead.ID, reg.DepHeadApproval.Actor)
	assert.Equal(t, registration.StatusPending, reg.Status)

	// deciding the same stage twice conflicts
	_, err = svc.Decide(ctx, depHead, reg.ID, registration.StageDepHead, registration.StageRequest{Status: "approved"})
	assert.True(t, core.IsConflict(err))

	// now awaiting the dean
	deanPending, err = svc.PendingDean(ctx, collDean)
	require.NoError(t, err)
	require.Len(t, deanPending, 1)

	reg, err = svc.Decide(ctx, collDean, reg.ID, registration.StageDean, registration.StageRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusApproved, reg.Status)
}

func TestService_Decide_rejectionIsTerminal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, student, newRegistration("2"))
	require.NoError(t, err)

	reg, err = svc.Decide(ctx, depHead, reg.ID, registration.StageDepHead, registration.StageRequest{Status: "rejected", Comment: "missing prerequisites"})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRejected, reg.Status)

	// a rejected registration never reaches the dean
	deanPending, err := svc.PendingDean(ctx, collDean)
	require.NoError(t, err)
	assert.Empty(t, deanPending)

	_, err = svc.Decide(ctx, collDean, reg.ID, registration.StageDean, registration.StageRequest{Status: "approved"})
	assert.True(t, core.IsConflict(err))
}

func TestService_Decide_firstSemesterIsAutomatic(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, student, newRegistration("1"))
	require.NoError(t, err)

	_, err = svc.Decide(ctx, depHead, reg.ID, registration.StageDepHead, registration.StageRequest{Status: "approved"})
	assert.True(t, core.IsConflict(err))
}
