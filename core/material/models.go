package material

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
)

// Material types.
const (
	TypeModule     = "module"
	TypeAssignment = "assignment"
	TypeVideo      = "video"
	TypeOther      = "other"
)

// Material is a course resource published by an instructor. Assignments may
// carry a due date and accept student submissions.
type Material struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Type        string    `json:"type" db:"type"`
	Course      string    `json:"course" db:"course"`
	Department  string    `json:"department" db:"department"`
	Semester    string    `json:"semester" db:"semester"`
	Year        string    `json:"year" db:"year"`
	FilePath    string    `json:"file_path,omitempty" db:"file_path"`
	VideoURL    string    `json:"video_url,omitempty" db:"video_url"`
	DueDate     time.Time `json:"due_date,omitempty" db:"due_date"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"` // account id
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Submission is one student's answer to an assignment; unique per
// (material, student), a resubmission replaces the prior file.
type Submission struct {
	ID          string    `json:"id" db:"id"`
	MaterialID  string    `json:"material_id" db:"material_id"`
	StudentID   string    `json:"student_id" db:"student_id"` // account id
	FilePath    string    `json:"file_path" db:"file_path"`
	Comment     string    `json:"comment,omitempty" db:"comment"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	// Grading fields; zero until the instructor grades.
	Mark     float64   `json:"mark,omitempty" db:"mark"`
	Feedback string    `json:"feedback,omitempty" db:"feedback"`
	GradedBy string    `json:"graded_by,omitempty" db:"graded_by"`
	GradedAt time.Time `json:"graded_at,omitempty" db:"graded_at"`
}

// NewMaterial publishes a resource. The file path is filled by the handler
// after the upload is stored; video materials carry a URL instead.
type NewMaterial struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required,oneof=module assignment video other"`
	Course      string    `json:"course" validate:"required"`
	Department  string    `json:"department" validate:"required"`
	Semester    string    `json:"semester" validate:"required,oneof=1 2"`
	Year        string    `json:"year" validate:"required"`
	VideoURL    string    `json:"video_url" validate:"omitempty,url"`
	DueDate     time.Time `json:"due_date"`
	FilePath    string    `json:"-"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Course = core.CleanString(nm.Course)
	nm.Department = core.CleanString(nm.Department)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.Type == TypeVideo {
		if nm.VideoURL == "" {
			return core.NewValidationError(nil,
				core.FieldError{Field: "video_url", Error: "a video URL is required for video materials"})
		}
	} else if nm.FilePath == "" {
		return core.NewValidationError(nil,
			core.FieldError{Field: "file", Error: "a file is required for this material type"})
	}
	return nil
}

// NewSubmission is a student's assignment upload; the file path is filled by
// the handler after the upload is stored.
type NewSubmission struct {
	Comment  string `json:"comment"`
	FilePath string `json:"-" validate:"required"`
}

// GradeRequest records an instructor's mark on a submission.
type GradeRequest struct {
	Mark     float64 `json:"mark" validate:"min=0,max=100"`
	Feedback string  `json:"feedback"`
}

type QueryFilter struct {
	Course     string `query:"course"`
	Department string `query:"department"`
	Semester   string `query:"semester"`
	Year       string `query:"year"`
	Type       string `query:"type"`
	UploadedBy string
}
