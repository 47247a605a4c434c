package cmd

import (
	"bufio"
	"os"

	"github.com/mergington/signupboard/pkg/activities"
	"github.com/mergington/signupboard/pkg/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// criteriaFromFlags reads the filter flags shared by activities and browse.
func criteriaFromFlags(cmd *cobra.Command) (activities.FilterCriteria, error) {
	c := activities.DefaultCriteria()

	category, _ := cmd.Flags().GetString("category")
	day, _ := cmd.Flags().GetString("day")
	timeRange, _ := cmd.Flags().GetString("time")
	search, _ := cmd.Flags().GetString("search")

	var err error
	if c.Category, err = activities.ParseCategory(category); err != nil {
		return c, err
	}
	if c.Day, err = activities.ParseDay(day); err != nil {
		return c, err
	}
	if c.TimeRange, err = activities.ParseTimeRange(timeRange); err != nil {
		return c, err
	}
	c.SearchText = search
	return c, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("category", "c", "all", "Category (Available: all, sports, arts, academic, community, technology)")
	cmd.Flags().StringP("day", "", "", "Only activities on this weekday (e.g. Monday)")
	cmd.Flags().StringP("time", "t", "", "Time range (Available: morning, afternoon, weekend)")
	cmd.Flags().StringP("search", "s", "", "Free text search over name, description and schedule")
}

// activitiesCmd represents the activities command
var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List activities",
	Long:  "Fetches the activities from the board and prints the ones matching the filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")
		participants, _ := cmd.Flags().GetBool("participants")

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.board.ApplyCriteria(cmd.Context(), func(fc *activities.FilterCriteria) { *fc = criteria }); err != nil {
			return quiet(err)
		}
		view, err := env.board.View()
		if err != nil {
			return err
		}

		if viper.GetBool("output.cards") {
			return render.PrintCards(os.Stdout, view, participants)
		}
		return render.PrintView(os.Stdout, view, render.OutputOptions{Flags: outputFlags, Delimiter: delimiter})
	},
}

func init() {
	rootCmd.AddCommand(activitiesCmd)

	addFilterFlags(activitiesCmd)
	activitiesCmd.Flags().StringP("output", "o", "n", "Output flags. Supported: n (name), d (description), s (schedule), c (category), p (participants), f (free spots). Example: -o ncf")
	activitiesCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")
	activitiesCmd.Flags().BoolP("cards", "", false, "Print activity cards instead of lines")
	activitiesCmd.Flags().BoolP("participants", "p", false, "Show participants on cards")

	viper.BindPFlag("output.cards", activitiesCmd.Flags().Lookup("cards"))
}
