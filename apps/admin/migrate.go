package main

import "github.com/desiigner101/stunotes/storage/database"

func (cli *commandLine) migrate() error {
	return database.Migrate(cli.db)
}

func (cli *commandLine) rollback() error {
	return database.Rollback(cli.db)
}
