package main

import (
	"fmt"
	"strconv"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/simp-lee/epubreader/library"
	"github.com/simp-lee/epubreader/markup"
)

// printPage writes a header line and the wrapped text under the cursor. In
// continuous mode the whole chapter is printed.
func (a *app) printPage() error {
	b, err := a.current()
	if err != nil {
		return err
	}
	if len(b.Chapters) == 0 {
		fmt.Fprintf(a.out, "%q has no readable chapters.\n", b.Metadata.Title)
		return nil
	}

	var content string
	header := fmt.Sprintf("%s | %s", b.Metadata.Title, b.TOC()[b.CurrentChapter].Title)
	if a.lib.ViewMode() == library.Continuous {
		content, _ = a.lib.Content(b.CurrentChapter)
	} else {
		page, _ := a.lib.CurrentPage()
		content = page.Content
		header += fmt.Sprintf(" | page %d/%d", b.CurrentPage+1, a.lib.Pages().Count())
	}
	header += fmt.Sprintf(" | %d%%", a.lib.Progress())

	text, err := markup.Text([]byte(content))
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	fmt.Fprintln(a.out, header)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, wordwrap.String(text, a.wrapWidth()))
	return nil
}

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Print the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printPage()
		},
	}
}

// newStepCmd builds next/prev. dir is +1 or -1.
func newStepCmd(a *app, use, short string, dir int) *cobra.Command {
	var byChapter bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.current(); err != nil {
				return err
			}
			var moved bool
			switch {
			case byChapter && dir > 0:
				moved = a.lib.NextChapter()
			case byChapter:
				moved = a.lib.PreviousChapter()
			default:
				moved = a.lib.AdvancePage(dir)
			}
			if !moved {
				if dir > 0 {
					fmt.Fprintln(a.out, "Already at the end.")
				} else {
					fmt.Fprintln(a.out, "Already at the beginning.")
				}
				return nil
			}
			return a.printPage()
		},
	}
	cmd.Flags().BoolVarP(&byChapter, "chapter", "c", false, "move by whole chapters")
	return cmd
}

func newChapterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chapter <n>",
		Short: "Jump to chapter n (1-based)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.current()
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid chapter number: %s", args[0])
			}
			if !a.lib.GotoChapter(n - 1) {
				return fmt.Errorf("chapter %d out of range 1-%d", n, len(b.Chapters))
			}
			return a.printPage()
		},
	}
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show reading progress of the current book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.current()
			if err != nil {
				return err
			}
			nav := a.lib.Navigation()
			fmt.Fprintf(a.out, "%s: %d%% (chapter %d of %d)\n",
				b.Metadata.Title, a.lib.Progress(), b.CurrentChapter+1, len(b.Chapters))
			fmt.Fprintf(a.out, "prev page: %t, next page: %t, prev chapter: %t, next chapter: %t\n",
				nav.PreviousPage, nav.NextPage, nav.PreviousChapter, nav.NextChapter)
			return nil
		},
	}
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mode [paginated|continuous]",
		Short: "Show or change the view mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				m, err := library.ParseViewMode(args[0])
				if err != nil {
					return err
				}
				a.lib.SetViewMode(m)
			}
			fmt.Fprintf(a.out, "View mode: %s\n", a.lib.ViewMode())
			return nil
		},
	}
}

func newBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget [words]",
		Short: "Show or change the words per page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid word count: %s", args[0])
				}
				a.lib.SetPageWordBudget(n)
			}
			fmt.Fprintf(a.out, "Words per page: %d\n", a.lib.PageWordBudget())
			return nil
		},
	}
}
