package main

import (
	"github.com/dagmawi/collegehub/storage/database"
)

func (cli *commandLine) migrate() error {
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}
	return database.Migrate(cli.db)
}
