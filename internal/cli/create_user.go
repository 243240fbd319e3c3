package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// CreateUserCommand creates an account without going through the web setup.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Admin        bool
	DatabasePath string

	Out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username, 3-64 letters, digits, '_' or '-' (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (required)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Give the user the admin role")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (default: DATABASE_* settings)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> -password <password> [-admin]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a reader account, or an administrator with -admin.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("required flag -password not provided")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	out := stdout(cmd.Out)

	db, cfg, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	role := entities.UserRoleReader
	if cmd.Admin {
		role = entities.UserRoleAdmin
	}

	user, err := auth.NewService(db.DB, cfg.Auth).CreateUser(cmd.Username, cmd.Email, cmd.Password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(out, "Created %s %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
