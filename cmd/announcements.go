package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mergington/signupboard/pkg/board"
	"github.com/mergington/signupboard/pkg/render"
	"github.com/spf13/cobra"
)

// announcementsCmd represents the announcements command
var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Show the active announcements",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newBoardClient()
		if err != nil {
			return err
		}
		list, err := client.ActiveAnnouncements(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", board.UserMessage(err, "Failed to load announcements."))
		}
		return render.PrintAnnouncements(os.Stdout, list, false)
	},
}

var announcementsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every announcement, including expired and scheduled ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.board.ManagedAnnouncements(cmd.Context())
		if err != nil {
			return quiet(err)
		}
		return render.PrintAnnouncements(os.Stdout, list, true)
	},
}

func announcementInput(cmd *cobra.Command) board.AnnouncementInput {
	message, _ := cmd.Flags().GetString("message")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	in := board.AnnouncementInput{Message: message, EndDate: end}
	if start != "" {
		in.StartDate = &start
	}
	return in
}

var announcementsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new announcement",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := announcementInput(cmd)
		if err := in.Validate(); err != nil {
			return err
		}

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.CreateAnnouncement(cmd.Context(), in)
		return quiet(err)
	},
}

var announcementsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an announcement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := announcementInput(cmd)
		if err := in.Validate(); err != nil {
			return err
		}

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.UpdateAnnouncement(cmd.Context(), args[0], in)
		return quiet(err)
	},
}

var announcementsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an announcement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), yes)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.DeleteAnnouncement(cmd.Context(), args[0])
		return quiet(err)
	},
}

func init() {
	rootCmd.AddCommand(announcementsCmd)
	announcementsCmd.AddCommand(announcementsAllCmd)
	announcementsCmd.AddCommand(announcementsCreateCmd)
	announcementsCmd.AddCommand(announcementsUpdateCmd)
	announcementsCmd.AddCommand(announcementsDeleteCmd)

	for _, c := range []*cobra.Command{announcementsCreateCmd, announcementsUpdateCmd} {
		c.Flags().StringP("message", "m", "", "Announcement text")
		c.Flags().StringP("start", "", "", "First day the announcement is shown (YYYY-MM-DD, optional)")
		c.Flags().StringP("end", "", "", "Last day the announcement is shown (YYYY-MM-DD)")
	}
	announcementsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
