package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"

	vocabrepo "github.com/mrlokans/wordhoard/internal/database/vocabulary"
	"github.com/mrlokans/wordhoard/internal/library"
)

// LibraryCommand prints a user's glossed words grouped by language.
type LibraryCommand struct {
	Username     string
	Language     string
	DatabasePath string

	Out io.Writer
}

func NewLibraryCommand() *LibraryCommand {
	return &LibraryCommand{}
}

func (cmd *LibraryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("library", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "user", "local", "Account whose library to print")
	fs.StringVar(&cmd.Language, "language", "", "Only print this language")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (default: DATABASE_* settings)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s library [-user <name>] [-language <language>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print every word with a saved meaning.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *LibraryCommand) Run() error {
	db, _, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := lookupUser(db, cmd.Username)
	if err != nil {
		return err
	}

	lib, err := library.NewAggregator(vocabrepo.NewRepository(db.DB)).Build(user.ID)
	if err != nil {
		return fmt.Errorf("failed to build library: %w", err)
	}

	printLibrary(stdout(cmd.Out), lib, cmd.Language)
	return nil
}

func printLibrary(w io.Writer, lib *library.Library, language string) {
	tbl := table.New("Language", "Word", "Meaning").WithWriter(w)
	rows := 0
	for _, group := range lib.Groups {
		if language != "" && group.Language != language {
			continue
		}
		for _, entry := range group.Entries {
			tbl.AddRow(group.Language, entry.Word, entry.Meaning)
			rows++
		}
	}

	if rows == 0 {
		fmt.Fprintln(w, "No meanings saved yet.")
		return
	}
	tbl.Print()
	fmt.Fprintf(w, "\n%d words\n", rows)
}
