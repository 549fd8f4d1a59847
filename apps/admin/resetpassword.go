package main

import (
	"context"

	"github.com/cddtech/lessonhub/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.svcs.User.ResetPassword(context.Background(), user.SetPassword{Email: email, Password: pwd})
}
