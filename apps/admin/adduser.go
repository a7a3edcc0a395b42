package main

import (
	"context"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/user"
)

// addUser creates an active admin account.
func (cli *commandLine) addUser(uname, email, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	nu := user.NewUser{
		FirstName:       "Admin",
		LastName:        "Admin",
		UserID:          uname,
		Username:        uname,
		Email:           core.CleanString(email, true /* lower */),
		Phone:           "n/a",
		Role:            user.RoleAdmin,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(cli.usrSvc); err != nil {
		return err
	}
	if _, err := cli.usrSvc.Create(context.Background(), nu); err != nil {
		return err
	}
	return nil
}
