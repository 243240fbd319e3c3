package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"

	docrepo "github.com/mrlokans/wordhoard/internal/database/documents"
	"github.com/mrlokans/wordhoard/internal/database/users"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// UsersCommand lists accounts and optionally promotes one to admin.
type UsersCommand struct {
	Promote      string
	DatabasePath string

	Out io.Writer
}

func NewUsersCommand() *UsersCommand {
	return &UsersCommand{}
}

func (cmd *UsersCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)

	fs.StringVar(&cmd.Promote, "promote", "", "Give this user the admin role before listing")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (default: DATABASE_* settings)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s users [-promote <name>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List accounts with their role and number of uploaded texts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *UsersCommand) Run() error {
	out := stdout(cmd.Out)

	db, _, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)
	if cmd.Promote != "" {
		user, err := lookupUser(db, cmd.Promote)
		if err != nil {
			return err
		}
		if err := repo.SetRole(user.ID, entities.UserRoleAdmin); err != nil {
			return err
		}
		fmt.Fprintf(out, "Promoted %q to admin\n\n", user.Username)
	}

	accounts, err := repo.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	docs := docrepo.NewRepository(db.DB)
	tbl := table.New("ID", "Username", "Role", "Texts").WithWriter(out)
	for _, u := range accounts {
		uploaded, err := docs.CountForUser(u.ID)
		if err != nil {
			return err
		}
		tbl.AddRow(u.ID, u.Username, u.Role, uploaded)
	}
	tbl.Print()
	return nil
}
