package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.epub>...",
		Short: "Import one or more ePub files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, errs := a.lib.ImportFiles(args, func(current, total int, name string) {
				fmt.Fprintf(a.out, "[%d/%d] %s\n", current, total, name)
			})
			for _, b := range books {
				fmt.Fprintf(a.out, "Imported %q by %s (%d chapters) as %s\n",
					b.Metadata.Title, b.Metadata.Creator, len(b.Chapters), b.ID)
			}
			for _, err := range errs {
				fmt.Fprintf(a.errOut, "Skipped: %v\n", err)
			}
			if len(books) == 0 && len(errs) > 0 {
				return fmt.Errorf("no file could be imported")
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := a.lib.Books()
			if len(books) == 0 {
				fmt.Fprintln(a.out, "No books in library.")
				return nil
			}
			current := a.lib.Current()

			fmt.Fprintf(a.out, "%-3s %-4s %-30s %-20s %-9s %s\n", "", "#", "Title", "Author", "Progress", "ID")
			fmt.Fprintln(a.out, strings.Repeat("-", 100))
			for i, b := range books {
				marker := ""
				if b == current {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%-3s %-4d %-30s %-20s %7d%%  %s\n",
					marker,
					i+1,
					truncateString(b.Metadata.Title, 30),
					truncateString(b.Metadata.Creator, 20),
					a.lib.ComputeProgress(b),
					b.ID)
			}
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	var next, prev bool
	cmd := &cobra.Command{
		Use:   "open [id|#]",
		Short: "Switch to another book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case next:
				if !a.lib.NextBook() {
					return fmt.Errorf("no other book to switch to")
				}
			case prev:
				if !a.lib.PreviousBook() {
					return fmt.Errorf("no other book to switch to")
				}
			case len(args) == 1:
				b, err := a.resolveBook(args[0])
				if err != nil {
					return err
				}
				a.lib.Activate(b.ID)
			default:
				return fmt.Errorf("give a book id or position, or --next/--prev")
			}
			b, err := a.current()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Now reading %q\n", b.Metadata.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "switch to the following book")
	cmd.Flags().BoolVar(&prev, "prev", false, "switch to the preceding book")
	cmd.MarkFlagsMutuallyExclusive("next", "prev")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|#>",
		Short: "Remove a book and its highlights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.resolveBook(args[0])
			if err != nil {
				return err
			}
			a.lib.RemoveBook(b.ID)
			fmt.Fprintf(a.out, "Removed %q\n", b.Metadata.Title)
			return nil
		},
	}
}

func newTOCCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toc",
		Short: "Show the table of contents of the current book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.current()
			if err != nil {
				return err
			}
			for _, e := range b.TOC() {
				marker := " "
				if e.Index == b.CurrentChapter {
					marker = ">"
				}
				fmt.Fprintf(a.out, "%s %3d  %s\n", marker, e.Index+1, e.Title)
			}
			return nil
		},
	}
}
