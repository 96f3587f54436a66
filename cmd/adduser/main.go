// Command adduser seeds a user into the file-based login store. Useful
// for local development and demos:
//
//	go run ./cmd/adduser -username alice -password secret -phone 16193278653
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/profile"
)

func main() {
	var (
		dataDir  = flag.String("data-dir", "./data", "data directory shared with cmd/verify")
		username = flag.String("username", "", "username to create")
		password = flag.String("password", "", "password for the new user")
		phoneNum = flag.String("phone", "", "phone number to enable SMS verification with (optional)")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		slog.Error("username and password are required")
		flag.Usage()
		os.Exit(1)
	}

	loginRepo, err := login.NewFileLoginRepository(*dataDir)
	if err != nil {
		slog.Error("Failed to open login store", "error", err)
		os.Exit(1)
	}
	loginService := login.NewLoginService(loginRepo)

	user, err := loginService.CreateUser(context.Background(), *username, *password)
	if err != nil {
		slog.Error("Failed to create user", "error", err)
		os.Exit(1)
	}

	if *phoneNum != "" {
		profileRepo, err := profile.NewFileProfileRepository(*dataDir)
		if err != nil {
			slog.Error("Failed to open profile store", "error", err)
			os.Exit(1)
		}
		profileService := profile.NewProfileService(profileRepo)
		if _, err := profileService.SaveProfile(context.Background(), user.ID, *phoneNum, true); err != nil {
			slog.Error("Failed to save second-factor profile", "error", err)
			os.Exit(1)
		}
		slog.Info("SMS verification enabled", "userId", user.ID)
	}

	slog.Info("User created", "userId", user.ID, "username", user.Username)
}
