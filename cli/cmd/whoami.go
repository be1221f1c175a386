package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account and its current room",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name := viper.GetString(displayNameKey)
		if name == "" || viper.GetString(tokenKey) == "" {
			fmt.Println("Not logged in")
			return
		}
		fmt.Println(name)

		var resp *roomResponse
		if err := doJSON(http.MethodGet, "/api/session/room", nil, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching current room: %v\n", err)
			return
		}
		if resp != nil {
			fmt.Printf("In room %s\n", resp.RoomCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
