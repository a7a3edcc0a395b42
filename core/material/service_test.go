package material_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/material"
	"github.com/dagmawi/collegehub/core/user"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

var (
	instructor = user.Principal{ID: "inst-1", Role: user.RoleInstructor}
	student    = user.Principal{ID: "stud-1", Role: user.RoleStudent}
)

// fakeStore records deletions; Save is never reached from the service.
type fakeStore struct {
	deleted []string
}

var _ core.FileStore = (*fakeStore)(nil)

func (s *fakeStore) Save(context.Context, string, string, io.Reader) (core.FileInfo, error) {
	return core.FileInfo{}, nil
}
func (s *fakeStore) Open(context.Context, string) (io.ReadCloser, core.FileInfo, error) {
	return nil, core.FileInfo{}, nil
}
func (s *fakeStore) Delete(_ context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T) (*material.Service, *fakeStore) {
	t.Helper()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	files := &fakeStore{}
	svc := material.NewService(inmemdb.NewMaterialRepository(inmemdb.NewDB()), files, nopLogger{}, validate)
	return svc, files
}

func newAssignment() material.NewMaterial {
	return material.NewMaterial{
		Title:      "Assignment 1",
		Type:       material.TypeAssignment,
		Course:     "CS101",
		Department: "Computer Science",
		Semester:   "1",
		Year:       "2017",
		DueDate:    time.Now().UTC().Add(24 * time.Hour),
		FilePath:   "assignment/a1.pdf",
	}
}

func TestService_Publish(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Publish(ctx, instructor, newAssignment())
	require.NoError(t, err)
	assert.Equal(t, material.TypeAssignment, m.Type)
	assert.Equal(t, instructor.ID, m.UploadedBy)

	// students cannot publish
	_, err = svc.Publish(ctx, student, newAssignment())
	assert.True(t, core.IsAuthorization(err))

	// non-video materials need a file
	bad := newAssignment()
	bad.FilePath = ""
	_, err = svc.Publish(ctx, instructor, bad)
	assert.Error(t, err)

	// video materials need a URL instead
	video := newAssignment()
	video.Type = material.TypeVideo
	video.FilePath = ""
	_, err = svc.Publish(ctx, instructor, video)
	assert.Error(t, err)
	video.VideoURL = "https://videos.example.com/lecture-1"
	_, err = svc.Publish(ctx, instructor, video)
	assert.NoError(t, err)

	materials, err := svc.Filter(ctx, material.QueryFilter{Type: material.TypeAssignment})
	require.NoError(t, err)
	assert.Len(t, materials, 1)
}

func TestService_SubmitWork(t *testing.T) {
	svc, files := newTestService(t)
	ctx := context.Background()

	m, err := svc.Publish(ctx, instructor, newAssignment())
	require.NoError(t, err)

	sub, err := svc.SubmitWork(ctx, student, m.ID, material.NewSubmission{FilePath: "submission/first.pdf"})
	require.NoError(t, err)
	assert.Equal(t, student.ID, sub.StudentID)

	// a resubmission replaces the previous one and drops its file
	sub2, err := svc.SubmitWork(ctx, student, m.ID, material.NewSubmission{
		FilePath: "submission/second.pdf", Comment: "fixed part 2",
	})
	require.NoError(t, err)
	assert.Contains(t, files.deleted, "submission/first.pdf")

	subs, err := svc.Submissions(ctx, instructor, m.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "submission/second.pdf", subs[0].FilePath)

	mine, err := svc.MySubmission(ctx, student, m.ID)
	require.NoError(t, err)
	assert.Equal(t, sub2.FilePath, mine.FilePath)

	// only the publisher sees the submission list
	_, err = svc.Submissions(ctx, student, m.ID)
	assert.True(t, core.IsAuthorization(err))

	// non-assignments do not accept submissions
	module := newAssignment()
	module.Type = material.TypeModule
	module.DueDate = time.Time{}
	mod, err := svc.Publish(ctx, instructor, module)
	require.NoError(t, err)
	_, err = svc.SubmitWork(ctx, student, mod.ID, material.NewSubmission{FilePath: "submission/x.pdf"})
	assert.True(t, core.IsConflict(err))
}

func TestService_SubmitWork_pastDue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	overdue := newAssignment()
	overdue.DueDate = time.Now().UTC().Add(-time.Hour)
	m, err := svc.Publish(ctx, instructor, overdue)
	require.NoError(t, err)

	_, err = svc.SubmitWork(ctx, student, m.ID, material.NewSubmission{FilePath: "submission/late.pdf"})
	assert.True(t, core.IsConflict(err))
}

func TestService_GradeSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.Publish(ctx, instructor, newAssignment())
	require.NoError(t, err)
	sub, err := svc.SubmitWork(ctx, student, m.ID, material.NewSubmission{FilePath: "submission/first.pdf"})
	require.NoError(t, err)

	// students cannot grade
	_, err = svc.GradeSubmission(ctx, student, m.ID, sub.ID, material.GradeRequest{Mark: 85})
	assert.True(t, core.IsAuthorization(err))

	graded, err := svc.GradeSubmission(ctx, instructor, m.ID, sub.ID, material.GradeRequest{Mark: 85, Feedback: "good work"})
	require.NoError(t, err)
	assert.Equal(t, 85.0, graded.Mark)
	assert.Equal(t, instructor.ID, graded.GradedBy)
	assert.False(t, graded.GradedAt.IsZero())

	// marks are capped at 100
	_, err = svc.GradeSubmission(ctx, instructor, m.ID, sub.ID, material.GradeRequest{Mark: 120})
	assert.Error(t, err)
}

func TestService_Delete_cleansUpBlobs(t *testing.T) {
	svc, files := newTestService(t)
	ctx := context.Background()

	m, err := svc.Publish(ctx, instructor, newAssignment())
	require.NoError(t, err)
	_, err = svc.SubmitWork(ctx, student, m.ID, material.NewSubmission{FilePath: "submission/first.pdf"})
	require.NoError(t, err)

	// only the publisher or an admin deletes
	assert.True(t, core.IsAuthorization(svc.Delete(ctx, student, m.ID)))

	require.NoError(t, svc.Delete(ctx, instructor, m.ID))
	assert.Contains(t, files.deleted, "assignment/a1.pdf")
	assert.Contains(t, files.deleted, "submission/first.pdf")

	_, err = svc.GetByID(ctx, m.ID)
	assert.True(t, core.IsNotFound(err))
}
