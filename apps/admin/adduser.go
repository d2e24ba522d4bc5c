package main

import (
	"context"
	"time"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin, isAdminOnly bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Username:  uname,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
	} else {
		usr.Name = name
		usr.UpdatedAt = now
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		active := true
		if usr, err = cli.usrRepo.UpdateUser(ctx, usr, &active); err != nil {
			return err
		}
	}

	if isAdmin {
		if _, err = cli.usrRepo.SetUserRoles(ctx, usr.ID, true, isAdminOnly); err != nil {
			return err
		}
	}
	return nil
}
