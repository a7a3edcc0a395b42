package result_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

var (
	instructor = user.Principal{ID: "inst-1", Role: user.RoleInstructor}
	depHead    = user.Principal{ID: "head-1", Role: user.RoleDepHead}
)

func newTestService(t *testing.T) (*result.Service, user.User) {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := &core.Config{AppName: "CollegeHub"}
	db := inmemdb.NewDB()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), dummymail.NewService(conf.AppName), conf, validate)
	svc := result.NewService(inmemdb.NewResultRepository(db), usrSvc, validate)

	student, err := usrSvc.CreateStudent(
		context.Background(), "Sara", "Tesfaye", "", "+251911000000", "Computer Science", "NSR/0001/17", "123456")
	require.NoError(t, err)
	return svc, student
}

func newResult(studentID, course string, assignment, final float64) result.NewResult {
	return result.NewResult{
		StudentID:  studentID,
		CourseCode: course,
		CourseName: course + " course",
		Department: "Computer Science",
		Year:       "2017",
		Semester:   "1",
		CreditHour: 4,
		Assignment: assignment,
		Final:      final,
	}
}

func TestService_Submit(t *testing.T) {
	svc, student := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, instructor, newResult(student.UserID, "CS101", 42, 45))
	require.NoError(t, err)
	assert.Equal(t, 87.0, res.Total)
	assert.Equal(t, "A", res.Grade)
	assert.Equal(t, result.StatusPending, res.Status)
	assert.Equal(t, instructor.ID, res.SubmittedBy)

	// grades are derived from the components, not accepted from the client
	res, err = svc.Submit(ctx, instructor, newResult(student.UserID, "MA102", 20, 25))
	require.NoError(t, err)
	assert.Equal(t, 45.0, res.Total)
	assert.Equal(t, "C-", res.Grade)

	// unknown students are rejected
	_, err = svc.Submit(ctx, instructor, newResult("NSR/9999/17", "CS101", 40, 40))
	assert.True(t, core.IsNotFound(err))

	// students cannot submit
	_, err = svc.Submit(ctx, user.Principal{ID: student.ID, Role: user.RoleStudent}, newResult(student.UserID, "CS101", 40, 40))
	assert.True(t, core.IsAuthorization(err))

	// component scores are capped at 50
	bad := newResult(student.UserID, "PH103", 60, 40)
	_, err = svc.Submit(ctx, instructor, bad)
	assert.Error(t, err)
}

func TestService_Approve(t *testing.T) {
	svc, student := newTestService(t)
	ctx := context.Background()

	res, err := svc.Submit(ctx, instructor, newResult(student.UserID, "CS101", 42, 45))
	require.NoError(t, err)

	// instructors cannot approve
	_, err = svc.Approve(ctx, instructor, res.ID)
	assert.True(t, core.IsAuthorization(err))

	res, err = svc.Approve(ctx, depHead, res.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusApproved, res.Status)
	assert.Equal(t, depHead.ID, res.ApprovedBy)
	assert.False(t, res.ApprovedAt.IsZero())

	// approving twice conflicts
	_, err = svc.Approve(ctx, depHead, res.ID)
	assert.True(t, core.IsConflict(err))
}

func TestService_StudentGrades(t *testing.T) {
	svc, student := newTestService(t)
	ctx := context.Background()
	actor := user.Principal{ID: student.ID, UserID: student.UserID, Role: user.RoleStudent}

	pending, err := svc.Submit(ctx, instructor, newResult(student.UserID, "CS101", 42, 45))
	require.NoError(t, err)
	approved, err := svc.Submit(ctx, instructor, newResult(student.UserID, "MA102", 35, 40))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, depHead, approved.ID)
	require.NoError(t, err)

	// students only ever see approved grades
	grades, err := svc.StudentGrades(ctx, actor, student.UserID, result.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "MA102", grades[0].CourseCode)

	// and only their own
	_, err = svc.StudentGrades(ctx, actor, "NSR/9999/17", result.QueryFilter{})
	assert.True(t, core.IsAuthorization(err))

	// students cannot browse the raw result store
	_, err = svc.Filter(ctx, actor, result.QueryFilter{})
	assert.True(t, core.IsAuthorization(err))

	// staff see pending results through Filter
	all, err := svc.Filter(ctx, depHead, result.QueryFilter{StudentID: student.UserID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_ = pending
}

func TestService_Report(t *testing.T) {
	svc, student := newTestService(t)
	ctx := context.Background()
	actor := user.Principal{ID: student.ID, UserID: student.UserID, Role: user.RoleStudent}

	first, err := svc.Submit(ctx, instructor, newResult(student.UserID, "CS101", 42, 45)) // A, 4 credits
	require.NoError(t, err)
	second := newResult(student.UserID, "MA102", 35, 40) // B+, 3 credits
	second.CreditHour = 3
	sec, err := svc.Submit(ctx, instructor, second)
	require.NoError(t, err)
	for _, id := range []string{first.ID, sec.ID} {
		_, err = svc.Approve(ctx, depHead, id)
		require.NoError(t, err)
	}

	rep, err := svc.Report(ctx, actor, student.UserID, result.QueryFilter{Semester: "1", Year: "2017"})
	require.NoError(t, err)
	assert.Len(t, rep.Courses, 2)
	assert.Equal(t, 7.0, rep.TotalCredit)
	// (4*4.0 + 3*3.3) / 7
	assert.Equal(t, "3.70", rep.GPA)
}
