package main

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
	dummymail "github.com/dagmawi/collegehub/services/email/dummy"
	inmemdb "github.com/dagmawi/collegehub/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	conf := &core.Config{AppName: "CollegeHub"}
	db := inmemdb.NewDB()
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), dummymail.NewService(conf.AppName), conf, validate)

	return &commandLine{conf: conf, usrSvc: usrSvc}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // prompted password
	wantErr bool
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: true},
		{name: "unknown command", args: []string{"lol"}, wantErr: true},
		{name: "no username", args: []string{"adduser"}, wantErr: true},
		{name: "username but no password", args: []string{"adduser", "-username", "boss"}, wantErr: true},
		{name: "ok", args: []string{"adduser", "-username", "boss", "-email", "Boss@Example.com"}, pwd: "s3cret!"},
		{name: "duplicate username", args: []string{"adduser", "-username", "boss"}, pwd: "s3cret!", wantErr: true},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr {
				if err == nil {
					t.Error("cli.run() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}
			usr, err := cli.usrSvc.GetByUsername(context.Background(), "boss")
			if err != nil {
				t.Fatalf("GetByUsername() failed, %v", err)
			}
			if usr.Role != user.RoleAdmin {
				t.Errorf("created user role = %s, want %s", usr.Role, user.RoleAdmin)
			}
			if !usr.IsActive {
				t.Error("created admin should be active")
			}
			if usr.Email != "boss@example.com" {
				t.Errorf("created user email = %s", usr.Email)
			}
			if err = usr.CheckPassword("s3cret!"); err != nil {
				t.Errorf("CheckPassword() failed, %v", err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("0r1gin4l"), nil }
	if err := cli.run([]string{"admin", "adduser", "-username", "awet"}); err != nil {
		t.Fatalf("adduser failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: true},
		{name: "username but no password", args: []string{"resetpassword", "-username", "awet"}, wantErr: true},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: true},
		{name: "ok", args: []string{"resetpassword", "-username", "awet"}, pwd: "n3w-pwd!"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr {
				if err == nil {
					t.Error("cli.run() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}
			usr, err := cli.usrSvc.GetByUsername(context.Background(), "awet")
			if err != nil {
				t.Fatalf("GetByUsername() failed, %v", err)
			}
			if err = usr.CheckPassword("n3w-pwd!"); err != nil {
				t.Errorf("new password does not verify, %v", err)
			}
			if err = usr.CheckPassword("0r1gin4l"); err == nil {
				t.Error("old password still verifies")
			}
		})
	}
}
