package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show which room this account is chatting in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var resp *roomResponse
		if err := doJSON(http.MethodGet, "/api/session/room", nil, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching current room: %v\n", err)
			return
		}
		if resp == nil {
			fmt.Println("Not in any room")
			return
		}
		fmt.Printf("Currently in room %s\n", resp.RoomCode)
	},
}

func init() {
	rootCmd.AddCommand(currentCmd)
}
