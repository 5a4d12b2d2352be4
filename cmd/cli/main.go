package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Beerzinss/DatKomp/internal/auth"
	"github.com/Beerzinss/DatKomp/internal/config"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
)

const usage = "expected 'migrate', 'status', 'add-admin' or 'set-password' subcommand"

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	email := addAdminCmd.String("email", "", "Email of the new administrator")
	password := addAdminCmd.String("password", "", "Password of the new administrator")
	firstName := addAdminCmd.String("first-name", "Admin", "First name")
	lastName := addAdminCmd.String("last-name", "DatKomp", "Last name")

	setPasswordCmd := flag.NewFlagSet("set-password", flag.ExitOnError)
	spEmail := setPasswordCmd.String("email", "", "Email of the user")
	spPassword := setPasswordCmd.String("password", "", "New password")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		db := openStore(ctx, true)
		defer db.Close()
		fmt.Println("Migrations applied.")
	case "status":
		db := openStore(ctx, false)
		defer db.Close()
		statuses, err := db.MigrationStatus(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, st := range statuses {
			fmt.Printf("%05d  %-10s  %s\n", st.Source.Version, st.State, st.Source.Path)
		}
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *email == "" || len(*password) < 6 {
			fmt.Println("email and a password of at least 6 characters are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openStore(ctx, true)
		defer db.Close()
		createAdmin(ctx, db, *firstName, *lastName, *email, *password)
	case "set-password":
		setPasswordCmd.Parse(os.Args[2:])
		if *spEmail == "" || len(*spPassword) < 6 {
			fmt.Println("email and a password of at least 6 characters are required")
			setPasswordCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openStore(ctx, true)
		defer db.Close()
		setPassword(ctx, db, *spEmail, *spPassword)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore connects with the server's configuration, optionally bringing the schema up to date.
func openStore(ctx context.Context, migrate bool) *store.Store {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := store.NewStore(ctx, cfg.DBDriver, cfg.DatabaseURL, store.Options{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if !migrate {
		return db
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createAdmin(ctx context.Context, db *store.Store, firstName, lastName, email, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	u := &models.User{FirstName: firstName, LastName: lastName, Email: email, PasswordHash: hash, IsAdmin: true}
	if err := db.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			log.Fatalf("A user with email %s already exists", email)
		}
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("Administrator '%s' created with id %d.\n", u.Email, u.ID)
}

func setPassword(ctx context.Context, db *store.Store, email, password string) {
	u, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to find user %s: %v", email, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.UpdatePassword(ctx, u.ID, hash); err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}
	fmt.Printf("Password for '%s' updated.\n", u.Email)
}
