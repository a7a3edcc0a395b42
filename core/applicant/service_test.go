package applicant_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/applicant"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

func newTestService(t *testing.T) (*applicant.Service, *user.Service) {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := &core.Config{AppName: "CollegeHub", FrontendBaseURL: "http://localhost:3000"}
	db := inmemdb.NewDB()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), dummymail.NewService(conf.AppName), conf, validate)
	svc := applicant.NewService(inmemdb.NewApplicantRepository(db), usrSvc, validate)

	dummymail.Reset()
	return svc, usrSvc
}

func newApplication(regID string) applicant.NewApplicant {
	return applicant.NewApplicant{
		RegID:       regID,
		FirstName:   "Abebe",
		MiddleName:  "Kebede",
		LastName:    "Bikila",
		BirthDate:   time.Date(2000, 5, 12, 0, 0, 0, 0, time.UTC),
		Sex:         "Male",
		Town:        "Adama",
		Woreda:      "08",
		Address:     "Kebele 12",
		Email:       "abebe@example.com",
		Department:  "Computer Science",
		Phone:       "+251911223344",
		Semester:    1,
		Year:        2017,
		PhotoPath:   "receipt/photo.png",
		Grade10Path: "receipt/g10.pdf",
		Grade12Path: "receipt/g12.pdf",
	}
}

func TestService_Apply(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, newApplication("NSR/0001/17"))
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, applicant.StatusPending, app.Status)

	// registration IDs are unique
	_, err = svc.Apply(ctx, newApplication("NSR/0001/17"))
	assert.True(t, core.IsConflict(err))

	// missing documents fail validation
	na := newApplication("NSR/0002/17")
	na.PhotoPath = ""
	_, err = svc.Apply(ctx, na)
	assert.Error(t, err)
}

func TestService_Approve(t *testing.T) {
	svc, usrSvc := newTestService(t)
	ctx := context.Background()
	registrar := user.Principal{ID: "reg-1", Role: user.RoleRegistrar}

	app, err := svc.Apply(ctx, newApplication("NSR/0001/17"))
	require.NoError(t, err)

	// students cannot approve
	_, err = svc.Approve(ctx, user.Principal{ID: "stud", Role: user.RoleStudent}, app.ID)
	assert.True(t, core.IsAuthorization(err))

	usr, err := svc.Approve(ctx, registrar, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "NSR/0001/17", usr.UserID)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.Equal(t, user.PaymentUnpaid, usr.PaymentStatus)
	assert.True(t, usr.IsActive)

	// credentials are emailed to the applicant
	require.Len(t, dummymail.SentMessages, 1)
	assert.Contains(t, dummymail.SentMessages[0].Body, usr.UserID)

	got, err := svc.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, applicant.StatusApproved, got.Status)

	// no pending applicants left
	pending, err := svc.Pending(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// the account can be resolved by its external ID
	student, err := usrSvc.GetStudentByUserID(ctx, "NSR/0001/17")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, student.ID)
	assert.Equal(t, "nsr_0001_17", student.Username)

	// approving twice reports a conflict
	_, err = svc.Approve(ctx, registrar, app.ID)
	assert.True(t, core.IsConflict(err))
}

func TestService_Reject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := user.Principal{ID: "adm-1", Role: user.RoleAdmin}

	app, err := svc.Apply(ctx, newApplication("NSR/0003/17"))
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, admin, app.ID))

	got, err := svc.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, applicant.StatusRejected, got.Status)

	// a decided applicant cannot be approved anymore
	_, err = svc.Approve(ctx, admin, app.ID)
	assert.True(t, core.IsConflict(err))

	assert.True(t, core.IsNotFound(svc.Reject(ctx, admin, "nope")))
}

func TestService_Pending_filtersByDepartment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := newApplication("NSR/0004/17")
	second := newApplication("NSR/0005/17")
	second.Department = "Accounting"
	_, err := svc.Apply(ctx, first)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, second)
	require.NoError(t, err)

	pending, err := svc.Pending(ctx, "Accounting")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "NSR/0005/17", pending[0].RegID)

	all, err := svc.Pending(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
