package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/report"
	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/core/workflow"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

type testEnv struct {
	svc     *report.Service
	resRepo result.Repository
	attRepo attendance.Repository
	student user.User
	actor   user.Principal
}

func newTestEnv(t *testing.T) testEnv {
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
	resRepo := inmemdb.NewResultRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	student, err := usrSvc.CreateStudent(
		context.Background(), "Sara", "Tesfaye", "sara@example.com", "+251911000000", "Computer Science", "NSR/0001/17", "123456")
	require.NoError(t, err)

	return testEnv{
		svc:     report.NewService(usrSvc, resRepo, attRepo),
		resRepo: resRepo,
		attRepo: attRepo,
		student: student,
		actor:   user.NewPrincipal(student),
	}
}

func (env testEnv) addResult(t *testing.T, course, year, semester string, credit, total float64, grade string, approved bool) {
	t.Helper()
	status := result.StatusPending
	if approved {
		status = result.StatusApproved
	}
	_, err := env.resRepo.CreateResult(context.Background(), result.Result{
		ID:         uuid.New().String(),
		StudentID:  env.student.UserID,
		CourseCode: course,
		CourseName: course + " course",
		Department: env.student.Department,
		Year:       year,
		Semester:   semester,
		CreditHour: credit,
		Total:      total,
		Grade:      grade,
		Status:     status,
	})
	require.NoError(t, err)
}

func (env testEnv) addSession(t *testing.T, course, status, recordStatus string) {
	t.Helper()
	ctx := context.Background()
	s, err := env.attRepo.CreateSession(ctx, attendance.Session{
		ID:         uuid.New().String(),
		Course:     course,
		Department: env.student.Department,
		Semester:   "1",
		Year:       "2017",
		Date:       time.Now().UTC(),
		Instructor: "inst-1",
		Status:     attendance.Machine.Initial(),
	})
	require.NoError(t, err)
	if status != string(attendance.StatusDraft) {
		patch := s
		patch.Status = workflow.Status(status)
		require.NoError(t, env.attRepo.SetSessionStatus(ctx, s.ID, attendance.StatusDraft, patch))
	}
	if recordStatus != "" {
		_, err = env.attRepo.UpsertRecord(ctx, attendance.Record{
			ID:        uuid.New().String(),
			SessionID: s.ID,
			StudentID: env.student.ID,
			Status:    recordStatus,
		})
		require.NoError(t, err)
	}
}

func TestService_Transcript(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addResult(t, "CS101", "2017", "1", 4, 87, "A", true)
	env.addResult(t, "MA102", "2017", "1", 3, 75, "B+", true)
	env.addResult(t, "PH201", "2017", "2", 3, 62, "C+", true)
	env.addResult(t, "CS202", "2017", "2", 3, 90, "A+", false) // pending, excluded

	tr, err := env.svc.Transcript(ctx, env.actor, env.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Sara Tesfaye", tr.Student.FullName)
	require.Len(t, tr.Terms, 2)

	first := tr.Terms[0]
	assert.Equal(t, "1", first.Semester)
	assert.Len(t, first.Courses, 2)
	assert.Equal(t, 7.0, first.TotalCredit)
	// transcript scale: (4*4.0 + 3*3.5) / 7
	assert.Equal(t, "3.79", first.GPA)

	second := tr.Terms[1]
	assert.Equal(t, "2", second.Semester)
	assert.Equal(t, "2.50", second.GPA)

	assert.Equal(t, 10.0, tr.TotalCredit)
	// (16 + 10.5 + 7.5) / 10
	assert.Equal(t, "3.40", tr.CGPA)

	// students only see their own transcript
	other := user.Principal{ID: "x", UserID: "NSR/9999/17", Role: user.RoleStudent}
	_, err = env.svc.Transcript(ctx, other, env.student.UserID)
	assert.True(t, core.IsAuthorization(err))
}

func TestService_Results(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addResult(t, "CS101", "2017", "1", 4, 87, "A", true)
	env.addResult(t, "PH201", "2017", "2", 3, 62, "C+", true)

	rep, err := env.svc.Results(ctx, env.actor, env.student.UserID, "1", "2017")
	require.NoError(t, err)
	require.Len(t, rep.Courses, 1)
	assert.Equal(t, "CS101", rep.Courses[0].CourseCode)
	// semester scale: C+ would be 2.3 here, A stays 4.0
	assert.Equal(t, 4.0, rep.Courses[0].GradePoint)

	all, err := env.svc.Results(ctx, env.actor, env.student.UserID, "", "")
	require.NoError(t, err)
	assert.Len(t, all.Courses, 2)
}

func TestService_Attendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addSession(t, "CS101", string(attendance.StatusApproved), attendance.Present)
	env.addSession(t, "CS101", string(attendance.StatusApproved), attendance.Late)
	env.addSession(t, "CS101", string(attendance.StatusSubmitted), attendance.Present) // awaiting approval, still counted
	env.addSession(t, "MA102", string(attendance.StatusApproved), "")                  // no record: absent
	env.addSession(t, "MA102", string(attendance.StatusDraft), "")                     // draft, excluded

	stats, err := env.svc.Attendance(ctx, env.actor, env.student.UserID, "1", "2017")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSessions)
	assert.Equal(t, 3, stats.Attended)
	assert.InDelta(t, 75.0, stats.Rate, 0.01)

	require.Len(t, stats.Courses, 2)
	cs := stats.Courses[0]
	assert.Equal(t, "CS101", cs.Course)
	assert.Equal(t, 3, cs.Sessions)
	assert.Equal(t, 2, cs.Present)
	assert.Equal(t, 1, cs.Late)
	assert.Equal(t, 100.0, cs.Rate)

	ma := stats.Courses[1]
	assert.Equal(t, 1, ma.Absent)
	assert.Equal(t, 0.0, ma.Rate)
}

func TestService_Attendance_noSessions(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.svc.Attendance(context.Background(), env.actor, env.student.UserID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Empty(t, stats.Courses)
	assert.Equal(t, 0.0, stats.Rate)
}
