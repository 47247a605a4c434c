package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mergington/signupboard/internal/utils"
	"github.com/mergington/signupboard/pkg/board"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signupboard",
	Short: "Mergington High School extracurricular activities from your terminal.",
	Long: `signupboard lists the school's extracurricular activities, lets teachers sign
students up or unregister them, and manages the announcements shown on the board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errAlreadyReported) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signupboard.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("api", "", "", "Board API base URL (default "+board.DEFAULT_API_URL+")")
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("session", "", "", "Session database path (default is $HOME/.config/signupboard/session.sqlite)")

	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api"))
	viper.BindPFlag("api.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("session.path", rootCmd.PersistentFlags().Lookup("session"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".signupboard")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("signupboard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.url", board.DEFAULT_API_URL)
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("api.retries", 0)
	viper.SetDefault("session.path", "")
	viper.SetDefault("output.cards", false)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".signupboard.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file %s: %v", configPath, err)
			}
		} else {
			utils.Log.Warnf("Could not read config file: %v", err)
		}
	}
}
