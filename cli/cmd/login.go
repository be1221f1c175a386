package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginCmd = &cobra.Command{
	Use:   "login [username] [password]",
	Short: "Sign in and store the credential for later commands",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var resp authResponse
		req := credentialsRequest{Username: args[0], Password: args[1]}
		if err := doJSON(http.MethodPost, "/api/auth/login", req, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error logging in: %v\n", err)
			return
		}

		viper.Set(tokenKey, resp.Token)
		viper.Set(displayNameKey, resp.User.Username)
		if err := saveConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			return
		}
		fmt.Printf("Logged in as %s\n", resp.User.Username)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
