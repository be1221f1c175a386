package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave the room this account is chatting in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := doJSON(http.MethodPost, "/api/session/leave", nil, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error leaving room: %v\n", err)
			return
		}
		fmt.Println("Left the room")
	},
}

func init() {
	rootCmd.AddCommand(leaveCmd)
}
