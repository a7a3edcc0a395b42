package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/applicant"
	"github.com/dagmawi/collegehub/core/attendance"
	"github.com/dagmawi/collegehub/core/catalog"
	"github.com/dagmawi/collegehub/core/material"
	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/report"
	"github.com/dagmawi/collegehub/core/result"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	"github.com/dagmawi/collegehub/storage/blob"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

type testApp struct {
	server Server
	auth   *authenticator
	usrSvc *user.Service
	catSvc *catalog.Service
	paySvc *payment.Service
	regSvc *registration.Service
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "CollegeHub",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Redis: core.RedisConfig{LoginLimit: 100, LoginWindow: time.Minute},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	files, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	logger := testLogger{t: t}

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), dummymail.NewService(conf.AppName), conf, validate)
	catSvc := catalog.NewService(inmemdb.NewCatalogRepository(db), validate)
	resRepo := inmemdb.NewResultRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)

	opts := &Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,

		UserSvc:         usrSvc,
		CatalogSvc:      catSvc,
		ApplicantSvc:    applicant.NewService(inmemdb.NewApplicantRepository(db), usrSvc, validate),
		RegistrationSvc: registration.NewService(inmemdb.NewRegistrationRepository(db), catSvc, validate),
		AttendanceSvc:   attendance.NewService(attRepo, usrSvc, validate),
		ResultSvc:       result.NewService(resRepo, usrSvc, validate),
		PaymentSvc:      payment.NewService(inmemdb.NewPaymentRepository(db), usrSvc, validate),
		MaterialSvc:     material.NewService(inmemdb.NewMaterialRepository(db), files, logger, validate),
		ReportSvc:       report.NewService(usrSvc, resRepo, attRepo),

		Files:    files,
		Validate: validate,
	}

	return &testApp{
		server: NewServer(opts),
		auth:   &authenticator{conf: conf, usrSvc: usrSvc},
		usrSvc: usrSvc,
		catSvc: catSvc,
		paySvc: opts.PaymentSvc,
		regSvc: opts.RegistrationSvc,
	}
}

func (app *testApp) createUser(t *testing.T, uname, role string) user.User {
	t.Helper()
	nu := user.NewUser{
		FirstName:       "Test",
		LastName:        "User",
		UserID:          uname,
		Username:        uname,
		Phone:           "+251911000000",
		Role:            role,
		Password:        "s3cret!",
		PasswordConfirm: "s3cret!",
	}
	require.NoError(t, nu.Validate(app.usrSvc))
	usr, err := app.usrSvc.Create(context.Background(), nu)
	require.NoError(t, err)
	return usr
}

func (app *testApp) createStudent(t *testing.T, userID string) user.User {
	t.Helper()
	usr, err := app.usrSvc.CreateStudent(
		context.Background(), "Sara", "Tesfaye", "", "+251911000000", "Computer Science", userID, "123456")
	require.NoError(t, err)
	return usr
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := app.auth.generateToken(app.auth.getUserClaims(usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}
