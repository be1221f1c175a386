package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	serverURLKey   = "server_url"
	tokenKey       = "token"
	displayNameKey = "display_name"
)

var rootCmd = &cobra.Command{
	Use:   "flychat",
	Short: "Chat in short-lived code-named rooms",
	Long: `flychat is a client for ephemeral chat rooms identified by 6-character
codes. Register once, create or join a room by its code, and chat live.`,
}

// Execute runs a single command when arguments are given, otherwise drops
// into an interactive prompt.
func Execute() {
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	fmt.Println("entering interactive mode, type 'exit' to quit")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("flychat> ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			continue
		}
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flychat.yaml)")
	rootCmd.PersistentFlags().String("server", "", "server base URL (overrides config)")
	_ = viper.BindPFlag(serverURLKey, rootCmd.PersistentFlags().Lookup("server"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".flychat")
	}

	viper.SetDefault(serverURLKey, "http://localhost:8000")
	viper.SetEnvPrefix("flychat")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// saveConfig persists the current settings, creating the config file on
// first use.
func saveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return homeErr
		}
		return viper.WriteConfigAs(filepath.Join(home, ".flychat.yaml"))
	}
	return nil
}
