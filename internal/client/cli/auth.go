package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	if email == "" {
		return "", "", errors.New("email is required")
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return strings.ToLower(email), string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return a.fail(err)
	}

	u, err := a.api.Register(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.email = u.Email
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return a.fail(err)
	}

	u, err := a.api.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.email = u.Email
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.SetToken("")
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
