package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	epub "github.com/simp-lee/epubreader"
	"github.com/simp-lee/epubreader/config"
	"github.com/simp-lee/epubreader/library"
	"github.com/simp-lee/epubreader/store"
)

const defaultWidth = 80

var errNoBook = errors.New("no book is open; import one first")

// app carries the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	storePath  string
	driver     string
	verbose    bool
	showDebug  bool
	clearDebug bool
	width      int

	store store.Store
	lib   *library.Library

	// restoreErr is set when the saved state could not be read. The
	// session then runs on an in-memory store so the blob is left as is.
	restoreErr error
}

// run executes one command line. The store is closed even when the
// command fails.
func run(args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "epubreader",
		Short:         "Read ePub books in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.lib == nil || a.restoreErr != nil {
				return nil
			}
			return a.lib.Save()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "epubreader.yaml", "path to the YAML configuration")
	flags.StringVar(&a.storePath, "store", "", "state location, overrides storage.path")
	flags.StringVar(&a.driver, "driver", "", "storage backend: badger, sqlite or memory")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&a.showDebug, "debug", false, "print the session log after the command")
	flags.BoolVar(&a.clearDebug, "clear-debug", false, "leave start-up entries out of the session log")
	flags.IntVar(&a.width, "width", 0, "wrap width in columns (default: terminal width)")

	root.AddCommand(
		newImportCmd(a),
		newListCmd(a),
		newOpenCmd(a),
		newRemoveCmd(a),
		newTOCCmd(a),
		newReadCmd(a),
		newStepCmd(a, "next", "Go to the next page", 1),
		newStepCmd(a, "prev", "Go to the previous page", -1),
		newChapterCmd(a),
		newProgressCmd(a),
		newHighlightCmd(a),
		newModeCmd(a),
		newBudgetCmd(a),
	)
	return root
}

// open loads the configuration, opens the store, and restores the library.
func (a *app) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.driver != "" {
		cfg.Storage.Driver = a.driver
	}
	if a.storePath != "" {
		cfg.Storage.Path = a.storePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(a.errOut)
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if a.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	a.store = st
	a.lib = library.New(library.Config{Reader: cfg, Store: st, Logger: logger})
	if err := a.lib.Restore(); err != nil {
		a.restoreErr = err
		logger.Warnf("Starting with an empty library, changes will not be saved: %v", err)
		a.lib = library.New(library.Config{Reader: cfg, Store: store.NewMemory(), Logger: logger})
	}
	if a.clearDebug {
		a.lib.ClearDebug()
	}
	return nil
}

func (a *app) close() error {
	if a.lib != nil && a.showDebug {
		for _, e := range a.lib.Debug() {
			fmt.Fprintln(a.errOut, e.String())
		}
	}
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// current returns the active book or errNoBook.
func (a *app) current() (*epub.Book, error) {
	if b := a.lib.Current(); b != nil {
		return b, nil
	}
	return nil, errNoBook
}

// resolveBook accepts a book id or its 1-based position in the list.
func (a *app) resolveBook(arg string) (*epub.Book, error) {
	if b, ok := a.lib.Book(arg); ok {
		return b, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		books := a.lib.Books()
		if n >= 1 && n <= len(books) {
			return books[n-1], nil
		}
	}
	return nil, fmt.Errorf("no book %q", arg)
}

// wrapWidth is the --width flag, the terminal width, or defaultWidth.
func (a *app) wrapWidth() int {
	if a.width > 0 {
		return a.width
	}
	if f, ok := a.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

func truncateString(s string, maxLength int) string {
	if len([]rune(s)) <= maxLength {
		return s
	}
	return string([]rune(s)[:maxLength-3]) + "..."
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
