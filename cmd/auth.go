package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a teacher",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		if username == "" {
			return fmt.Errorf("please provide your username (-u flag)")
		}

		in := bufio.NewReader(os.Stdin)
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("could not read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		env, err := newBoardEnv(cmd.Context(), in, false)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.board.Login(cmd.Context(), username, password)
		return quiet(err)
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored teacher session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		env.board.Logout(cmd.Context())
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in teacher",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newBoardEnv(cmd.Context(), bufio.NewReader(os.Stdin), false)
		if err != nil {
			return err
		}
		defer env.Close()

		u := env.board.State().User()
		if u == nil {
			fmt.Println("Not logged in")
			return nil
		}
		if u.DisplayName != "" {
			fmt.Printf("%s (%s)\n", u.DisplayName, u.Username)
		} else {
			fmt.Println(u.Username)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "Teacher username")
	loginCmd.Flags().StringP("password", "p", "", "Teacher password (prompted for when empty)")
}
