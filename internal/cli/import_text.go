package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	docrepo "github.com/mrlokans/wordhoard/internal/database/documents"
	"github.com/mrlokans/wordhoard/internal/documents"
	"github.com/mrlokans/wordhoard/internal/languages"
)

// ImportTextCommand adds a .txt, .docx or .html file to the community texts.
type ImportTextCommand struct {
	FilePath     string
	Title        string
	Author       string
	Language     string
	Username     string
	DatabasePath string

	Out io.Writer
}

func NewImportTextCommand() *ImportTextCommand {
	return &ImportTextCommand{}
}

func (cmd *ImportTextCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-text", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a .txt, .docx or .html file (required)")
	fs.StringVar(&cmd.Title, "title", "", "Title shown in the community list (default: file name)")
	fs.StringVar(&cmd.Author, "author", "", "Author of the text (required)")
	fs.StringVar(&cmd.Language, "language", "", "Language of the text, e.g. \"Old English\" (required)")
	fs.StringVar(&cmd.Username, "user", "local", "Account the upload is attributed to")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite database (default: DATABASE_* settings)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-text -file <path> -author <name> -language <language> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a text so it can be read with vocabulary annotations.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s import-text -file beowulf.txt -title Beowulf -author Anonymous -language \"Old English\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.Title == "" {
		base := filepath.Base(cmd.FilePath)
		cmd.Title = base[:len(base)-len(filepath.Ext(base))]
	}
	return nil
}

func (cmd *ImportTextCommand) Run() error {
	out := stdout(cmd.Out)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cmd.FilePath, err)
	}
	defer file.Close()

	db, cfg, err := openDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := lookupUser(db, cmd.Username)
	if err != nil {
		return err
	}

	service := documents.NewService(docrepo.NewRepository(db.DB), languages.NewSet(cfg.Vocabulary.AllowedLanguages), nil)
	doc, err := service.Create(user, documents.Upload{
		Title:    cmd.Title,
		Author:   cmd.Author,
		Language: cmd.Language,
		Filename: filepath.Base(cmd.FilePath),
		Body:     file,
	})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", cmd.FilePath, err)
	}

	fmt.Fprintf(out, "Imported %q by %s (%s) as %s\n", doc.Title, doc.Author, doc.Language, doc.ID)
	return nil
}
