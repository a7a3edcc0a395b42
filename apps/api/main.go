package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/dagmawi/collegehub/apps/api/echo"
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
	sendgridmail "github.com/dagmawi/collegehub/services/email/sendgrid"
	logsvc "github.com/dagmawi/collegehub/services/logger"
	"github.com/dagmawi/collegehub/storage/blob"
	"github.com/dagmawi/collegehub/storage/cache"
	"github.com/dagmawi/collegehub/storage/database"
	sqlxrepos "github.com/dagmawi/collegehub/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Wait()

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	rdb := cache.NewRedis(conf.Redis.Addr)
	defer func() { _ = rdb.Close() }()

	files, err := blob.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = dummymail.NewService(conf.AppName)
	} else {
		mailSvc = sendgridmail.NewService(conf.SendgridApiKey, conf.AppName, conf.DefaultFromEmail, logger)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc, conf, validate)
	catSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(sdb), validate)
	resRepo := sqlxrepos.NewResultRepository(sdb)
	attRepo := sqlxrepos.NewAttendanceRepository(sdb)

	opts := &echoapi.Options{
		Conf:   conf,
		Logger: logger,

		UserSvc:         usrSvc,
		CatalogSvc:      catSvc,
		ApplicantSvc:    applicant.NewService(sqlxrepos.NewApplicantRepository(sdb), usrSvc, validate),
		RegistrationSvc: registration.NewService(sqlxrepos.NewRegistrationRepository(sdb), catSvc, validate),
		AttendanceSvc:   attendance.NewService(attRepo, usrSvc, validate),
		ResultSvc:       result.NewService(resRepo, usrSvc, validate),
		PaymentSvc:      payment.NewService(sqlxrepos.NewPaymentRepository(sdb), usrSvc, validate),
		MaterialSvc:     material.NewService(sqlxrepos.NewMaterialRepository(sdb), files, logger, validate),
		ReportSvc:       report.NewService(usrSvc, resRepo, attRepo),

		Files:    files,
		Cache:    rdb,
		Validate: validate,
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	opts.Shutdown = func() { shutdown <- syscall.SIGTERM }

	server := echoapi.NewServer(opts)

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
