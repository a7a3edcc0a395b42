package user

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("user not found")
	ErrUsernameExists = core.NewConflictError("a user with this username already exists")
	ErrUserIDExists   = core.NewConflictError("a user with this ID already exists")
)

var nonUsernameChars = regexp.MustCompile(`[^\w]+`)

// UsernameFromUserID derives a login username from an external user ID;
// legacy registration IDs carry slashes ("NSR/0001/17") that usernames do
// not allow.
func UsernameFromUserID(userID string) string {
	return nonUsernameChars.ReplaceAllString(core.CleanString(userID, true /* lower */), "_")
}

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, userID string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUserID(ctx context.Context, userID string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on name, username or user ID.
		FilterUsers(ctx context.Context, filter QueryFilter, ord ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		SetPaymentStatus(ctx context.Context, id, status string) error
		SetLastLogin(ctx context.Context, id string, t time.Time) error
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		conf     *core.Config
		validate *validator.Validate
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, validate *validator.Validate) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf, validate: validate}
}

func (svc *Service) checkUniqueness(uname, userID string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.TODO(), uname, userID, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrUserIDExists:
			field = "user_id"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:            uuid.New().String(),
		UserID:        nu.UserID,
		FirstName:     nu.FirstName,
		LastName:      nu.LastName,
		Username:      nu.Username,
		Email:         nu.Email,
		Phone:         nu.Phone,
		Role:          nu.Role,
		Department:    nu.Department,
		IsActive:      true,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// CreateStudent provisions a student account from an approved applicant with
// a default password and emails the credentials. The caller owns the
// applicant-side status update; there is no transaction spanning the two.
func (svc *Service) CreateStudent(ctx context.Context, firstName, lastName, email, phone, department, userID, password string) (User, error) {
	nu := NewUser{
		FirstName:       firstName,
		LastName:        lastName,
		UserID:          userID,
		Username:        UsernameFromUserID(userID),
		Email:           core.CleanString(email, true /* lower */),
		Phone:           phone,
		Role:            RoleStudent,
		Department:      department,
		Password:        password,
		PasswordConfirm: password,
	}
	if err := nu.Validate(svc); err != nil {
		return User{}, err
	}
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		return User{}, err
	}

	if usr.Email != "" && svc.mailSvc != nil {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
			Subject: "Your student account is ready",
			Body: fmt.Sprintf(
				"Welcome to %s!\n\nYour admission has been approved.\n\nStudent ID: %s\nUsername: %s\nTemporary password: %s\n\nPlease sign in at %s and change your password.",
				svc.conf.AppName, usr.UserID, usr.Username, password, svc.conf.FrontendBaseURL,
			),
		})
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (User, error) {
	return svc.repo.GetUserByUserID(ctx, core.CleanString(userID))
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// GetStudentByUserID resolves an external student ID to its account.
func (svc *Service) GetStudentByUserID(ctx context.Context, userID string) (User, error) {
	usr, err := svc.repo.GetUserByUserID(ctx, core.CleanString(userID))
	if err != nil {
		return User{}, err
	}
	if !usr.IsStudent() {
		return User{}, core.NewNotFoundError("student not found")
	}
	return usr, nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ord ...core.DBOrdering) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter, ord...)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:         id,
		FirstName:  uu.FirstName,
		LastName:   uu.LastName,
		Username:   uu.Username,
		Email:      uu.Email,
		Phone:      uu.Phone,
		Role:       uu.Role,
		Department: uu.Department,
		UpdatedAt:  time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

// SetActive flips the active flag without touching anything else.
func (svc *Service) SetActive(ctx context.Context, id string, active bool) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, &active)
}

func (svc *Service) SetPaymentStatus(ctx context.Context, id, status string) error {
	return svc.repo.SetPaymentStatus(ctx, id, status)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, err
	}
	usr.LastLogin = now
	return usr, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
