package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}

	if err := a.auth.Register(ctx, email, password, confirm); err != nil {
		return err
	}
	fmt.Println("Registered!")
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, email, password); err != nil {
		return err
	}
	if a.auth.State().IsOffline {
		fmt.Println("Logged in (offline)")
	} else {
		fmt.Println("Logged in")
	}
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func (a *App) cloud(ctx context.Context) error {
	payload, err := a.auth.CloudData(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Cloud payload v%d from %s: %d folders, %d notes, %d tasks\n",
		payload.Version, payload.Timestamp,
		len(payload.Folders), len(payload.Notes), len(payload.Tasks))
	return nil
}
