package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var chatCmd = &cobra.Command{
	Use:   "chat [room_code]",
	Short: "Join a room and chat live in a tview-based interface",
	Long: `Joins the given room over a websocket and opens a full-screen chat view.
Type messages at the bottom and see the room history above. Ctrl+C exits.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code := strings.ToUpper(strings.TrimSpace(args[0]))
		if viper.GetString(tokenKey) == "" {
			fmt.Fprintln(os.Stderr, "Not logged in. Run 'login <username> <password>' first.")
			return
		}
		if err := runChatUI(code); err != nil {
			fmt.Fprintf(os.Stderr, "Chat error: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChatUI(roomCode string) error {
	displayName := viper.GetString(displayNameKey)

	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()

	inputField := tview.NewInputField().
		SetLabel(displayName + " > ").
		SetFieldWidth(0)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed the view with persisted history before going live.
	var history []messageView
	if err := doJSON(http.MethodGet, "/api/rooms/"+roomCode+"/messages", nil, &history); err != nil {
		fmt.Fprintf(textView, "[red]Error loading history: %v\n", err)
	} else {
		for _, m := range history {
			fmt.Fprintf(textView, "[white][%s] [blue]%s[white]: %s\n",
				m.SentAt.Local().Format("15:04:05"), m.SenderName, m.Text)
		}
	}
	textView.ScrollToEnd()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(joinRoomEnvelope(roomCode)); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}
	fmt.Fprintf(textView, "[green]Welcome to %s! You are %s. (Ctrl+C to exit)\n", roomCode, displayName)

	go func() {
		for {
			var env serverEnvelope
			if err := conn.ReadJSON(&env); err != nil {
				if ctx.Err() == nil {
					app.QueueUpdateDraw(func() {
						fmt.Fprintln(textView, "[red]Connection closed by server.")
					})
				}
				cancel()
				return
			}
			app.QueueUpdateDraw(func() {
				switch env.Type {
				case "new-message":
					if env.Message != nil {
						fmt.Fprintf(textView, "[white][%s] [blue]%s[white]: %s\n",
							env.Message.SentAt.Local().Format("15:04:05"),
							env.Message.SenderName,
							env.Message.Text)
					}
				case "user-joined":
					fmt.Fprintf(textView, "[green]%s joined the room\n", env.Username)
				case "user-left":
					fmt.Fprintf(textView, "[yellow]%s left the room\n", env.Username)
				case "error":
					fmt.Fprintf(textView, "[red]%s\n", env.Reason)
				}
				textView.ScrollToEnd()
			})
		}
	}()

	inputField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(inputField.GetText())
		if text == "" {
			return
		}
		if err := conn.WriteJSON(sendMessageEnvelope(roomCode, text)); err != nil {
			app.QueueUpdateDraw(func() {
				fmt.Fprintf(textView, "[red]Failed to send message: %v\n", err)
			})
		}
		inputField.SetText("")
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			_ = conn.WriteJSON(leaveRoomEnvelope())
			cancel()
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.Run(); err != nil {
		return err
	}
	return nil
}
