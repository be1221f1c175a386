package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [room_code]",
	Short: "Print the recent messages of a room, oldest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code := strings.ToUpper(strings.TrimSpace(args[0]))
		var messages []messageView
		if err := doJSON(http.MethodGet, "/api/rooms/"+code+"/messages", nil, &messages); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching messages: %v\n", err)
			return
		}
		for _, m := range messages {
			fmt.Printf("[%s] %s: %s\n", m.SentAt.Local().Format("15:04:05"), m.SenderName, m.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
