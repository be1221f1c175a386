package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Wire types mirroring the server's REST and websocket JSON.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type roomResponse struct {
	RoomCode string `json:"roomCode"`
}

type messageView struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type clientEnvelope struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Text string `json:"text,omitempty"`
}

func joinRoomEnvelope(code string) clientEnvelope {
	return clientEnvelope{Type: "join-room", Room: code}
}

// sendMessageEnvelope carries the room code alongside the text; the server
// rejects sends whose code does not match the sender's live room.
func sendMessageEnvelope(code, text string) clientEnvelope {
	return clientEnvelope{Type: "send-message", Room: code, Text: text}
}

func leaveRoomEnvelope() clientEnvelope {
	return clientEnvelope{Type: "leave-room"}
}

type serverEnvelope struct {
	Type     string       `json:"type"`
	Message  *messageView `json:"message,omitempty"`
	UserID   string       `json:"userId,omitempty"`
	Username string       `json:"username,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func apiURL(path string) string {
	return strings.TrimRight(viper.GetString(serverURLKey), "/") + path
}

func wsURL() string {
	base := strings.TrimRight(viper.GetString(serverURLKey), "/")
	base = strings.Replace(base, "http", "ws", 1)
	return base + "/ws?token=" + viper.GetString(tokenKey)
}

// doJSON issues one API request, attaching the stored credential and
// decoding either the response body or the server's error message.
func doJSON(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, apiURL(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := viper.GetString(tokenKey); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
