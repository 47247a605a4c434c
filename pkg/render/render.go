// Package render prints activity views, announcements and banners to a
// terminal. It never filters; callers pass the output of activities.BuildView.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/app"
	"github.com/mergington/signupboard/pkg/board"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// NoActivitiesMessage is printed instead of an empty view.
const NoActivitiesMessage = "No activities found"

// OutputOptions controls line output. Flags is a string of field letters:
// n name, d description, s schedule, c category, p participants, f free spots.
type OutputOptions struct {
	Flags     string
	Delimiter string
}

// DefaultOutputOptions prints the name only.
var DefaultOutputOptions = OutputOptions{Flags: "n", Delimiter: " "}

// PrintView prints one line per item.
func PrintView(w io.Writer, items []activities.ViewItem, opts OutputOptions) error {
	if opts.Flags == "" {
		opts.Flags = DefaultOutputOptions.Flags
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, NoActivitiesMessage)
		return err
	}
	for _, it := range items {
		line, err := createLine(it, opts)
		if err != nil {
			return err
		}
		if len(line) > 0 {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func createLine(it activities.ViewItem, opts OutputOptions) (string, error) {
	var line string
	for _, f := range opts.Flags {
		switch f {
		case 'n':
			line += it.Name + opts.Delimiter
		case 'd':
			line += it.Activity.Description + opts.Delimiter
		case 's':
			schedule, err := activities.FormatSchedule(it.Activity)
			if err != nil {
				return "", err
			}
			line += schedule + opts.Delimiter
		case 'c':
			line += string(it.Category) + opts.Delimiter
		case 'p':
			line += strings.Join(it.Activity.Participants, ",") + opts.Delimiter
		case 'f':
			line += strconv.Itoa(it.Activity.SpotsLeft()) + opts.Delimiter
		default:
			return "", fmt.Errorf("invalid output flag %q (available: n, d, s, c, p, f)", f)
		}
	}
	return strings.TrimSuffix(line, opts.Delimiter), nil
}

// PrintCards prints the human readable card layout.
func PrintCards(w io.Writer, items []activities.ViewItem, showParticipants bool) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, NoActivitiesMessage)
		return err
	}

	var sb strings.Builder
	for i, it := range items {
		schedule, err := activities.FormatSchedule(it.Activity)
		if err != nil {
			return err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s [%s]\n", it.Name, it.Category)
		if it.Activity.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", it.Activity.Description)
		}
		fmt.Fprintf(&sb, "  Schedule: %s\n", schedule)

		a := it.Activity
		if a.IsFull() {
			fmt.Fprintf(&sb, "  %sFull%s (%d/%d)\n", colorRed, colorReset, len(a.Participants), a.MaxParticipants)
		} else {
			fmt.Fprintf(&sb, "  %d spots left (%d/%d)\n", a.SpotsLeft(), len(a.Participants), a.MaxParticipants)
		}

		if showParticipants {
			if len(a.Participants) == 0 {
				sb.WriteString("  No participants yet\n")
			}
			for _, p := range a.Participants {
				fmt.Fprintf(&sb, "  - %s\n", p)
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// PrintAnnouncements prints the active announcements, or with manage set
// the full table teachers use to edit them.
func PrintAnnouncements(w io.Writer, list []board.Announcement, manage bool) error {
	if !manage {
		if len(list) == 0 {
			return nil
		}
		for _, a := range list {
			if _, err := fmt.Fprintf(w, "%s[!] %s%s\n", colorYellow, a.Message, colorReset); err != nil {
				return err
			}
		}
		return nil
	}

	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No announcements")
		return err
	}

	today := time.Now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSTART\tEND\tAUTHOR\tMESSAGE")
	for _, a := range list {
		start := "-"
		if a.StartDate != nil && *a.StartDate != "" {
			start = *a.StartDate
		}
		author := a.CreatedByName
		if author == "" {
			author = a.CreatedBy
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Status(today), start, a.EndDate, author, a.Message)
	}
	return tw.Flush()
}

// PrintBanner prints b on a single colored line.
func PrintBanner(w io.Writer, b app.Banner) {
	color := colorCyan
	switch b.Kind {
	case app.BannerSuccess:
		color = colorGreen
	case app.BannerError:
		color = colorRed
	}
	fmt.Fprintf(w, "%s%s%s\n", color, b.Message, colorReset)
}
