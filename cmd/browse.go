package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mergington/signupboard/internal/utils"
	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/app"
	"github.com/mergington/signupboard/pkg/render"
	"github.com/spf13/cobra"
)

const browseHelp = `Commands:
  show                        re-render the current view
  category <name>             all, sports, arts, academic, community, technology
  day <weekday>               filter by day, empty to clear
  time <range>                morning, afternoon, weekend, empty to clear
  search <text>               free text search, empty to clear
  reset                       clear every filter
  refresh                     refetch activities and announcements
  signup <email> <activity>   sign a student up
  unregister <email> <activity>
  quit
`

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive activity board",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}

		in := bufio.NewReader(os.Stdin)
		env, err := newBoardEnv(cmd.Context(), in, false)
		if err != nil {
			return err
		}
		defer env.Close()

		env.board.ApplyCriteria(cmd.Context(), func(fc *activities.FilterCriteria) { *fc = criteria })
		env.board.RefreshAnnouncements(cmd.Context())
		return runBrowse(cmd.Context(), env.board, in, os.Stdout)
	},
}

// runBrowse reads commands from in until quit or EOF. Local filter changes
// re-render from the cached collection; day and time changes refetch.
func runBrowse(ctx context.Context, b *app.Board, in *bufio.Reader, out io.Writer) error {
	render.PrintAnnouncements(out, b.State().Announcements(), false)
	show(out, b)

	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}

		verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(verb) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprint(out, browseHelp)
			continue
		case "show":
		case "category":
			c, err := activities.ParseCategory(rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			b.SetCategory(c)
		case "search":
			b.SetSearch(rest)
		case "day":
			d, err := activities.ParseDay(rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			b.SetDay(ctx, d)
		case "time":
			tr, err := activities.ParseTimeRange(rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			b.SetTimeRange(ctx, tr)
		case "reset":
			b.ResetCriteria(ctx)
		case "refresh":
			b.Refresh(ctx)
			if b.RefreshAnnouncements(ctx) == nil {
				render.PrintAnnouncements(out, b.State().Announcements(), false)
			}
		case "signup", "unregister":
			email, activity, ok := strings.Cut(rest, " ")
			activity = strings.TrimSpace(activity)
			if !ok || email == "" || activity == "" {
				fmt.Fprintf(out, "usage: %s <email> <activity>\n", verb)
				continue
			}
			if verb == "signup" {
				_, err = b.Signup(ctx, activity, email)
			} else {
				_, err = b.Unregister(ctx, activity, email)
			}
			if errors.Is(err, app.ErrCancelled) {
				fmt.Fprintln(out, "Cancelled")
			}
			if err != nil {
				continue
			}
		default:
			fmt.Fprintf(out, "unknown command %q, type help\n", verb)
			continue
		}
		show(out, b)
	}
}

func show(out io.Writer, b *app.Board) {
	view, err := b.View()
	if err != nil {
		utils.Log.Errorf("Could not build view: %v", err)
		return
	}
	render.PrintCards(out, view, true)
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addFilterFlags(browseCmd)
}
