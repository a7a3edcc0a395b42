package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/workflow"
)

// Payment statuses.
const (
	StatusPending  = workflow.Pending
	StatusVerified = workflow.Status("verified")
	StatusRejected = workflow.Rejected
)

// Machine is the payment verification lifecycle; rejection is terminal and
// requires a reason.
var Machine = workflow.Machine{
	Name:      "payment",
	Stages:    []workflow.Status{StatusPending, StatusVerified},
	Rejection: StatusRejected,
}

// Payment is one student's tuition payment submission with its receipt.
type Payment struct {
	ID          string          `json:"id" db:"id"`
	StudentID   string          `json:"student_id" db:"student_id"` // account id
	Semester    string          `json:"semester" db:"semester"`
	Year        string          `json:"year" db:"year"`
	Amount      float64         `json:"amount" db:"amount"`
	Method      string          `json:"method" db:"method"`
	Reference   string          `json:"reference,omitempty" db:"reference"`
	ReceiptPath string          `json:"receipt_path" db:"receipt_path"`
	Status      workflow.Status `json:"status" db:"status"`
	// Reason explains a rejection; empty otherwise.
	Reason     string    `json:"reason,omitempty" db:"reason"`
	VerifiedBy string    `json:"verified_by,omitempty" db:"verified_by"`
	VerifiedAt time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NewPayment is a student's payment submission. The receipt path is filled
// by the handler after the upload is stored.
type NewPayment struct {
	Semester    string  `json:"semester" validate:"required,oneof=1 2"`
	Year        string  `json:"year" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required"`
	Reference   string  `json:"reference"`
	ReceiptPath string  `json:"-" validate:"required"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Method = core.CleanString(np.Method)
	np.Reference = core.CleanString(np.Reference)
	return validate.Struct(np)
}

// VerifyRequest is a registrar's decision on a pending payment.
type VerifyRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
	// Reason is required when rejecting.
	Reason string `json:"reason"`
}

type QueryFilter struct {
	StudentID string
	Semester  string `query:"semester"`
	Year      string `query:"year"`
	Status    string `query:"status"`
}
