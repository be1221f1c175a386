package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room and print its code",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var resp roomResponse
		if err := doJSON(http.MethodPost, "/api/rooms", struct{}{}, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating room: %v\n", err)
			return
		}
		fmt.Printf("Room created: %s\n", resp.RoomCode)
		fmt.Printf("Share this code, then run 'chat %s' to start talking\n", resp.RoomCode)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
