package applicant

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
)

// Admission statuses.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type Applicant struct {
	ID          string    `json:"id" db:"id"`
	RegID       string    `json:"reg_id" db:"reg_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	MiddleName  string    `json:"middle_name" db:"middle_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	BirthDate   time.Time `json:"birth_date" db:"birth_date"`
	Sex         string    `json:"sex" db:"sex"`
	Town        string    `json:"town" db:"town"`
	Woreda      string    `json:"woreda" db:"woreda"`
	Address     string    `json:"address" db:"address"`
	Email       string    `json:"email" db:"email"`
	Department  string    `json:"department" db:"department"`
	Phone       string    `json:"phone" db:"phone"`
	Semester    int       `json:"semester" db:"semester"`
	Year        int       `json:"year" db:"year"`
	PhotoPath   string    `json:"photo" db:"photo_path"`
	Grade10Path string    `json:"grade10_file" db:"grade10_path"`
	Grade12Path string    `json:"grade12_file" db:"grade12_path"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewApplicant is an admission application. Document paths are filled in by
// the handler after the blobs are stored.
type NewApplicant struct {
	RegID       string    `json:"reg_id" validate:"required"`
	FirstName   string    `json:"first_name" validate:"required"`
	MiddleName  string    `json:"middle_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	BirthDate   time.Time `json:"birth_date" validate:"required"`
	Sex         string    `json:"sex" validate:"required,oneof=Male Female"`
	Town        string    `json:"town" validate:"required"`
	Woreda      string    `json:"woreda" validate:"required"`
	Address     string    `json:"address" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Department  string    `json:"department" validate:"required"`
	Phone       string    `json:"phone" validate:"required"`
	Semester    int       `json:"semester" validate:"required,min=1,max=2"`
	Year        int       `json:"year" validate:"required"`
	PhotoPath   string    `json:"-" validate:"required"`
	Grade10Path string    `json:"-" validate:"required"`
	Grade12Path string    `json:"-" validate:"required"`
}

func (na *NewApplicant) Validate(validate *validator.Validate) error {
	na.RegID = core.CleanString(na.RegID)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

type QueryFilter struct {
	Department string `query:"department"`
	Status     string `query:"status"`
}
