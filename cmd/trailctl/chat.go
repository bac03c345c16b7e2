package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one chat turn to a running server",
	Long: `Send a single message through the recommendation pipeline and print
the assistant's reply.

Examples:
  trailctl chat "an easy course for a family trip"
  trailctl chat --session weekend "something with less walking"
  trailctl chat --json "Bukhansan please"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "session id to continue (empty starts a new session)")
	chatCmd.Flags().Bool("json", false, "print the raw JSON response")
	chatCmd.Flags().Duration("timeout", 60*time.Second, "request timeout")
}

type chatResult struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Response  string `json:"response"`
	Degraded  bool   `json:"degraded"`
	Results   []struct {
		Mountain    string  `json:"mountain"`
		Course      string  `json:"course"`
		Difficulty  string  `json:"difficulty"`
		DistanceKm  float64 `json:"distance_km"`
		AppealScore float64 `json:"appeal_score"`
	} `json:"results"`
}

func runChat(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	message := strings.Join(args, " ")

	payload, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(serverURL+"/v1/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if jsonOutput {
		fmt.Println(string(body))
		return nil
	}

	var result chatResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("session: %s\nintent:  %s\n", result.SessionID, result.Intent)
	if result.Degraded {
		fmt.Println("note:    degraded response (template fallback)")
	}
	fmt.Printf("\n%s\n", result.Response)

	if len(result.Results) > 0 {
		fmt.Println("\nmatched trails:")
		for _, r := range result.Results {
			fmt.Printf("  - %s %s  (%s, %.1f km, appeal %.1f)\n",
				r.Mountain, r.Course, r.Difficulty, r.DistanceKm, r.AppealScore)
		}
	}
	return nil
}
