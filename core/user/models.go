package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dagmawi/collegehub/core"
)

// Role tags carried over from the legacy account enumeration. "CollegeDean"
// keeps its odd casing for data compatibility.
const (
	RoleAdmin       = "admin"
	RoleStudent     = "student"
	RoleInstructor  = "instructor"
	RoleCoordinator = "coordinator"
	RoleDepHead     = "dep-head"
	RoleRegistrar   = "registrar"
	RoleDean        = "CollegeDean"
)

var AllRoles = []string{
	RoleAdmin, RoleStudent, RoleInstructor, RoleCoordinator, RoleDepHead, RoleRegistrar, RoleDean,
}

// Payment statuses of an account.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentVerified = "verified"
)

type User struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"` // external, user-facing
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email,omitempty" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Role          string    `json:"role" db:"role"`
	Department    string    `json:"department,omitempty" db:"department"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	PasswordHash  []byte    `json:"-" db:"password_hash"`
	LastLogin     time.Time `json:"last_login" db:"last_login"` // UTC
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }

// Principal is the authenticated caller, resolved from the bearer credential
// and passed explicitly into every service call that needs authorization.
type Principal struct {
	ID            string
	UserID        string
	Username      string
	Role          string
	IsActive      bool
	PaymentStatus string
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsStudent() bool    { return p.Role == RoleStudent }
func (p Principal) IsInstructor() bool { return p.Role == RoleInstructor }
func (p Principal) IsRegistrar() bool  { return p.Role == RoleRegistrar }
func (p Principal) IsDean() bool       { return p.Role == RoleDean }

// IsDepHead reports whether the caller can act as a department head; the
// dean tag is accepted wherever a department head is.
func (p Principal) IsDepHead() bool { return p.Role == RoleDepHead || p.Role == RoleDean }

// IsApprover reports whether the caller may advance approval stages owned by
// academic management.
func (p Principal) IsApprover() bool { return p.IsAdmin() || p.IsDepHead() }

func NewPrincipal(usr User) Principal {
	return Principal{
		ID:            usr.ID,
		UserID:        usr.UserID,
		Username:      usr.Username,
		Role:          usr.Role,
		IsActive:      usr.IsActive,
		PaymentStatus: usr.PaymentStatus,
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	UserID          string `json:"user_id" validate:"required"`
	Username        string `json:"username" validate:"required,min=4,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"required"`
	Role            string `json:"role" validate:"required,role"`
	Department      string `json:"department"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.UserID = core.CleanString(nu.UserID)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := svc.validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username, nu.UserID)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Role            string `json:"role" validate:"omitempty,role"`
	Department      string `json:"department"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	if name := core.CleanString(uu.FirstName); name != "" {
		uu.FirstName = name
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if name := core.CleanString(uu.LastName); name != "" {
		uu.LastName = name
	} else {
		uu.LastName = origUsr.LastName
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uu.Phone == "" {
		uu.Phone = origUsr.Phone
	}
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}
	if uu.Department == "" {
		uu.Department = origUsr.Department
	}

	if err := svc.validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(uu.Username, origUsr.UserID, origUsr)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
