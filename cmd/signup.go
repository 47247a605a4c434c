package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/mergington/signupboard/pkg/app"
	"github.com/spf13/cobra"
)

// signupCmd represents the signup command
var signupCmd = &cobra.Command{
	Use:   "signup <activity>",
	Short: "Sign a student up for an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return fmt.Errorf("please provide the student email (-e flag)")
		}

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.Signup(cmd.Context(), args[0], email)
		return quiet(err)
	},
}

// unregisterCmd represents the unregister command
var unregisterCmd = &cobra.Command{
	Use:   "unregister <activity>",
	Short: "Unregister a student from an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		yes, _ := cmd.Flags().GetBool("yes")
		if email == "" {
			return fmt.Errorf("please provide the student email (-e flag)")
		}

		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), yes)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.Unregister(cmd.Context(), args[0], email)
		return quiet(err)
	},
}

// errAlreadyReported marks a failure the board already printed as a banner.
var errAlreadyReported = errors.New("")

// quiet keeps a failure's exit status without printing it a second time.
// A declined confirmation is not a failure.
func quiet(err error) error {
	if err == nil || errors.Is(err, app.ErrCancelled) {
		return nil
	}
	return errAlreadyReported
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(unregisterCmd)

	signupCmd.Flags().StringP("email", "e", "", "Student email")
	unregisterCmd.Flags().StringP("email", "e", "", "Student email")
	unregisterCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
