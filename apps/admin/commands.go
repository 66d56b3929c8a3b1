package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/vitor518/Mangues/core/user"
)

var errPointsMismatch = errors.New("point totals disagree with achievements")

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, "migrations", arguments...)
}

func (cli *commandLine) seed() error {
	if err := cli.achSvc.Seed(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "achievements seeded")
	return nil
}

func (cli *commandLine) addUser(name, handle, avatar, pwd string) error {
	nu := user.NewUser{
		Name:     name,
		Handle:   handle,
		Avatar:   avatar,
		Password: pwd,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Register(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %d (%s) created\n", usr.ID, usr.Handle)
	return nil
}

func (cli *commandLine) resetPassword(handle, pwd string) error {
	_, err := cli.usrSvc.SetPassword(context.Background(), handle, pwd)
	return err
}

func (cli *commandLine) verifyPoints() error {
	ds, err := cli.achSvc.Audit(context.Background())
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		fmt.Fprintln(cli.out, "ok: every point total matches its achievements")
		return nil
	}
	for _, d := range ds {
		fmt.Fprintf(cli.out, "usuario %d: total_pontos=%d soma_conquistas=%d\n", d.UserID, d.TotalPoints, d.GrantPoints)
	}
	return errPointsMismatch
}
