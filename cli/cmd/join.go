package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join [room_code]",
	Short: "Check that a room code exists before chatting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code := strings.ToUpper(strings.TrimSpace(args[0]))
		var resp roomResponse
		if err := doJSON(http.MethodPost, "/api/rooms/"+code+"/join", nil, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error joining room: %v\n", err)
			return
		}
		fmt.Printf("Room %s found, run 'chat %s' to start talking\n", resp.RoomCode, resp.RoomCode)
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
