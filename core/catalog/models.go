package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
)

// noPrerequisite marks courses without an entry requirement.
const noPrerequisite = "None"

// Department is an academic unit offerings and accounts hang off of.
type Department struct {
	ID string `json:"id" db:"id"`
	// DepartmentID is the registrar's short code, e.g. "CS".
	DepartmentID string    `json:"department_id" db:"department_id"`
	Name         string    `json:"name" db:"name"`
	Faculty      string    `json:"faculty" db:"faculty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Course is one catalog offering; registrations denormalize its display
// fields at registration time.
type Course struct {
	ID           string    `json:"id" db:"id"`
	Code         string    `json:"course_code" db:"code"`
	Name         string    `json:"course_name" db:"name"`
	Department   string    `json:"department" db:"department"`
	CreditHours  float64   `json:"credit_hours" db:"credit_hours"`
	Prerequisite string    `json:"prerequisite" db:"prerequisite"`
	Semester     string    `json:"semester" db:"semester"`
	Year         string    `json:"year" db:"year"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type NewDepartment struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Faculty      string `json:"faculty" validate:"required"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.DepartmentID = core.CleanString(nd.DepartmentID)
	nd.Name = core.CleanString(nd.Name)
	nd.Faculty = core.CleanString(nd.Faculty)
	return validate.Struct(nd)
}

type NewCourse struct {
	Code         string  `json:"course_code" validate:"required"`
	Name         string  `json:"course_name" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	CreditHours  float64 `json:"credit_hours" validate:"required,gt=0"`
	Prerequisite string  `json:"prerequisite"`
	Semester     string  `json:"semester" validate:"required,oneof=1 2"`
	Year         string  `json:"year" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Department = core.CleanString(nc.Department)
	nc.Prerequisite = core.CleanString(nc.Prerequisite)
	if nc.Prerequisite == "" {
		nc.Prerequisite = noPrerequisite
	}
	return validate.Struct(nc)
}

type CourseFilter struct {
	Department string `query:"department"`
	Semester   string `query:"semester"`
	Year       string `query:"year"`
}
