package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/config"
	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/lending"
	"Gin_postgres_redis_av_lending/routes"

	"golang.org/x/term"
)

const version = "0.3.0"

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	createAdmin := flag.String("create-admin", "", "create an admin account with this email and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("av-lending", version)
		return
	}

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	if *migrate {
		cfg := app.LoadConfig()
		logger := app.NewLogger(cfg)
		// ConnectDB 本身会跑迁移
		if _, err := db.ConnectDB(cfg.DatabaseURL, true); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		logger.Info().Msg("migrations applied")
		return
	}

	application := app.MustNew()
	defer application.Close()

	if *createAdmin != "" {
		if err := runCreateAdmin(application, *createAdmin); err != nil {
			application.Log.Error().Err(err).Msg("create admin")
			application.Close()
			os.Exit(1)
		}
		return
	}

	app.BootstrapFirstAdmin(context.Background(), application)
	routes.RegisterRoutes(application.Router, application)

	addr := ":" + application.Config.Port
	application.Log.Info().Str("addr", addr).Str("version", version).Msg("listening")
	if err := application.Router.Run(addr); err != nil {
		application.Log.Error().Err(err).Msg("server stopped")
	}
}

// runCreateAdmin 交互式：名字明文读，密码不回显
func runCreateAdmin(a *app.App, email string) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Name: ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read name: %w", err)
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if string(pw) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	u, err := a.Svc.ProvisionUser(context.Background(), lending.UserInput{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(pw),
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	a.Log.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("admin created")
	return nil
}
