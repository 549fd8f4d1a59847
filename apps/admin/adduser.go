package main

import (
	"context"

	"github.com/cddtech/lessonhub/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, school, pwd string, isAdmin bool) error {
	usr, err := cli.svcs.User.AddOrUpdate(context.Background(), user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		School:   school,
	}, isAdmin)
	if err != nil {
		return err
	}
	cli.printf("user %s <%s> saved\n", usr.Name, usr.Email)
	return nil
}
