package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

func newTestService(t *testing.T) *user.Service {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := &core.Config{AppName: "CollegeHub", FrontendBaseURL: "http://localhost:3000"}
	db := inmemdb.NewDB()
	dummymail.Reset()
	return user.NewService(inmemdb.NewUserRepository(db), dummymail.NewService(conf.AppName), conf, validate)
}

func newUser(uname, role string) user.NewUser {
	return user.NewUser{
		FirstName:       "Alem",
		LastName:        "Worku",
		UserID:          uname,
		Username:        uname,
		Phone:           "+251911000000",
		Role:            role,
		Password:        "s3cret!",
		PasswordConfirm: "s3cret!",
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nu := newUser("alem", user.RoleInstructor)
	require.NoError(t, nu.Validate(svc))
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.Equal(t, user.PaymentUnpaid, usr.PaymentStatus)
	assert.NoError(t, usr.CheckPassword("s3cret!"))
	assert.Error(t, usr.CheckPassword("wrong"))

	// usernames are unique
	dup := newUser("alem", user.RoleInstructor)
	dup.UserID = "alem2"
	err = dup.Validate(svc)
	require.Error(t, err)

	// unknown roles are rejected
	bad := newUser("kebe", "janitor")
	assert.Error(t, bad.Validate(svc))

	got, err := svc.GetByUsername(ctx, "Alem")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
}

func TestService_CreateStudent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	usr, err := svc.CreateStudent(ctx, "Sara", "Tesfaye", "Sara@Example.com", "+251911000001", "Accounting", "NSR/0010/17", "123456")
	require.NoError(t, err)
	assert.Equal(t, "NSR/0010/17", usr.UserID)
	assert.Equal(t, "nsr_0010_17", usr.Username)
	assert.Equal(t, "sara@example.com", usr.Email)
	assert.Equal(t, user.RoleStudent, usr.Role)

	// the credentials email went out
	require.Len(t, dummymail.SentMessages, 1)

	// external IDs are unique
	_, err = svc.CreateStudent(ctx, "Other", "Student", "", "+251911000002", "Accounting", "NSR/0010/17", "123456")
	assert.Error(t, err)

	// only student accounts resolve as students
	_, err = svc.GetStudentByUserID(ctx, "NSR/0010/17")
	assert.NoError(t, err)
	nu := newUser("staff", user.RoleRegistrar)
	require.NoError(t, nu.Validate(svc))
	staff, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	_, err = svc.GetStudentByUserID(ctx, staff.UserID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nu := newUser("alem", user.RoleInstructor)
	require.NoError(t, nu.Validate(svc))
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)

	uu := user.UpdateUser{FirstName: "Alemu", Department: "Physics"}
	require.NoError(t, uu.Validate(usr, svc))
	updated, err := svc.Update(ctx, usr.ID, uu)
	require.NoError(t, err)
	assert.Equal(t, "Alemu", updated.FirstName)
	assert.Equal(t, "Worku", updated.LastName) // untouched
	assert.Equal(t, "Physics", updated.Department)

	// deactivation sticks
	updated, err = svc.SetActive(ctx, usr.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestService_Filter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, acct := range []struct{ uname, role string }{
		{"alem", user.RoleInstructor},
		{"kebede", user.RoleRegistrar},
		{"almaz", user.RoleInstructor},
	} {
		nu := newUser(acct.uname, acct.role)
		require.NoError(t, nu.Validate(svc))
		_, err := svc.Create(ctx, nu)
		require.NoError(t, err)
	}

	instructors, err := svc.Filter(ctx, user.QueryFilter{Roles: []string{user.RoleInstructor}})
	require.NoError(t, err)
	assert.Len(t, instructors, 2)

	found, err := svc.Filter(ctx, user.QueryFilter{Search: "alm"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "almaz", found[0].Username)
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nu := newUser("alem", user.RoleInstructor)
	require.NoError(t, nu.Validate(svc))
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, usr.ID))
	_, err = svc.GetByID(ctx, usr.ID)
	assert.True(t, core.IsNotFound(err))
}
