package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users [room_code]",
	Short: "List the users currently connected to a room",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code := strings.ToUpper(strings.TrimSpace(args[0]))
		var users []userView
		if err := doJSON(http.MethodGet, "/api/rooms/"+code+"/users", nil, &users); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching users: %v\n", err)
			return
		}
		if len(users) == 0 {
			fmt.Println("Nobody is here right now")
			return
		}
		for _, u := range users {
			fmt.Println(u.Username)
		}
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
