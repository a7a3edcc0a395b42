package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	"github.com/dagmawi/collegehub/storage/database"
	sqlxrepos "github.com/dagmawi/collegehub/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	sdb := sqlx.NewDb(db, conf.Database.Engine)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), dummymail.NewService(conf.AppName), conf, validate)

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		usrSvc: usrSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
