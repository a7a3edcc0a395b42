package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
	"github.com/dagmawi/collegehub/storage/cache"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Shutdown       func()
		DisableReqLogs bool

		UserSvc         *user.Service
		CatalogSvc      *catalog.Service
		ApplicantSvc    *applicant.Service
		RegistrationSvc *registration.Service
		AttendanceSvc   *attendance.Service
		ResultSvc       *result.Service
		PaymentSvc      *payment.Service
		MaterialSvc     *material.Service
		ReportSvc       *report.Service

		Files    core.FileStore
		Cache    *cache.Redis
		Validate *validator.Validate
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		auth *authenticator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
		auth: &authenticator{conf: opts.Conf, usrSvc: opts.UserSvc},
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(conf, s.opts.Logger, s.opts.Shutdown)
	s.app.Debug = conf.Debug

	prom := newMetrics()
	s.app.Use(prom.middleware())
	s.app.GET("/metrics", prom.handler())

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig())
	paid := paidStudentMiddleware()

	registerUserAPI(v1, jwt, s.auth, s.opts)
	registerCatalogAPI(v1, jwt, s.opts)
	registerApplicantAPI(v1, jwt, s.opts)
	registerRegistrationAPI(v1, jwt, paid, s.opts)
	registerAttendanceAPI(v1, jwt, s.opts)
	registerResultAPI(v1, jwt, paid, s.opts)
	registerPaymentAPI(v1, jwt, s.opts)
	registerMaterialAPI(v1, jwt, paid, s.opts)
	registerReportAPI(v1, jwt, paid, s.opts)
	registerFileAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CollegeHub API!")
}
