package payment_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

var registrar = user.Principal{ID: "reg-1", Role: user.RoleRegistrar}

func newTestService(t *testing.T) (*payment.Service, *user.Service, user.Principal) {
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
	svc := payment.NewService(inmemdb.NewPaymentRepository(db), usrSvc, validate)

	student, err := usrSvc.CreateStudent(
		context.Background(), "Sara", "Tesfaye", "", "+251911000000", "Computer Science", "NSR/0001/17", "123456")
	require.NoError(t, err)
	return svc, usrSvc, user.NewPrincipal(student)
}

func newPayment() payment.NewPayment {
	return payment.NewPayment{
		Semester:    "1",
		Year:        "2017",
		Amount:      3500,
		Method:      "bank transfer",
		Reference:   "TRX-001",
		ReceiptPath: "receipt/trx-001.pdf",
	}
}

func TestService_Submit(t *testing.T) {
	svc, usrSvc, student := newTestService(t)
	ctx := context.Background()

	p, err := svc.Submit(ctx, student, newPayment())
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, student.ID, p.StudentID)

	// the account moves to pending until the registrar decides
	usr, err := usrSvc.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentPending, usr.PaymentStatus)

	// only students pay tuition
	_, err = svc.Submit(ctx, registrar, newPayment())
	assert.True(t, core.IsAuthorization(err))

	// the receipt upload is mandatory
	bad := newPayment()
	bad.ReceiptPath = ""
	_, err = svc.Submit(ctx, student, bad)
	assert.Error(t, err)

	mine, err := svc.MyPayments(ctx, student)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestService_Verify(t *testing.T) {
	svc, usrSvc, student := newTestService(t)
	ctx := context.Background()

	p, err := svc.Submit(ctx, student, newPayment())
	require.NoError(t, err)

	// students cannot verify, not even their own
	_, err = svc.Verify(ctx, student, p.ID, payment.VerifyRequest{Status: "verified"})
	assert.True(t, core.IsAuthorization(err))

	pending, err := svc.Pending(ctx, registrar, payment.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	p, err = svc.Verify(ctx, registrar, p.ID, payment.VerifyRequest{Status: "verified"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusVerified, p.Status)
	assert.Equal(t, registrar.ID, p.VerifiedBy)

	// verification unlocks the student surface
	usr, err := usrSvc.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentVerified, usr.PaymentStatus)

	// deciding twice conflicts
	_, err = svc.Verify(ctx, registrar, p.ID, payment.VerifyRequest{Status: "verified"})
	assert.True(t, core.IsConflict(err))
}

func TestService_Verify_reject(t *testing.T) {
	svc, usrSvc, student := newTestService(t)
	ctx := context.Background()

	p, err := svc.Submit(ctx, student, newPayment())
	require.NoError(t, err)

	// rejections carry a reason
	_, err = svc.Verify(ctx, registrar, p.ID, payment.VerifyRequest{Status: "rejected"})
	assert.Error(t, err)

	p, err = svc.Verify(ctx, registrar, p.ID, payment.VerifyRequest{Status: "rejected", Reason: "receipt unreadable"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRejected, p.Status)
	assert.Equal(t, "receipt unreadable", p.Reason)

	// a rejected payment drops the account back to unpaid
	usr, err := usrSvc.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentUnpaid, usr.PaymentStatus)
}

func TestService_GetByID_authorization(t *testing.T) {
	svc, _, student := newTestService(t)
	ctx := context.Background()

	p, err := svc.Submit(ctx, student, newPayment())
	require.NoError(t, err)

	// owner and registrar can see it
	_, err = svc.GetByID(ctx, student, p.ID)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, registrar, p.ID)
	assert.NoError(t, err)

	// other students cannot
	other := user.Principal{ID: "stud-2", Role: user.RoleStudent}
	_, err = svc.GetByID(ctx, other, p.ID)
	assert.True(t, core.IsAuthorization(err))
}
