package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simp-lee/epubreader/annotation"
)

func newHighlightCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "highlight",
		Aliases: []string{"hl"},
		Short:   "Manage highlights of the current book",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <yellow|blue|green> <text>...",
			Short: "Highlight text on the current page",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.current(); err != nil {
					return err
				}
				color, err := annotation.ParseColor(args[0])
				if err != nil {
					return err
				}
				h, ok := a.lib.CreateHighlight(joinArgs(args[1:]), color)
				if !ok {
					return fmt.Errorf("highlight text must not be empty")
				}
				fmt.Fprintf(a.out, "Added %s highlight %s\n", h.Color, h.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List highlights, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.current()
				if err != nil {
					return err
				}
				list := a.lib.Highlights(b.ID)
				if len(list) == 0 {
					fmt.Fprintln(a.out, "No highlights.")
					return nil
				}
				for _, h := range list {
					fmt.Fprintf(a.out, "%s  %-6s ch %d p %d  %s  %q\n",
						h.ID, h.Color, h.Chapter+1, h.Page+1,
						h.DateCreated.Local().Format("2006-01-02 15:04"),
						truncateString(h.Text, 60))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a highlight",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.current()
				if err != nil {
					return err
				}
				if !a.lib.DeleteHighlight(b.ID, args[0]) {
					return fmt.Errorf("no highlight %q", args[0])
				}
				fmt.Fprintf(a.out, "Deleted %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "goto <id>",
			Short: "Jump to a highlight",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.current(); err != nil {
					return err
				}
				if !a.lib.GotoHighlight(args[0]) {
					return fmt.Errorf("no highlight %q", args[0])
				}
				return a.printPage()
			},
		},
	)
	return cmd
}
