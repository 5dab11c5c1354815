package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	askUserID string
	askTarget string
)

// askCmd routes a prompt through a running daemon
var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send a prompt to the nexusd server",
	Long: `Send a prompt through the orchestration core of a running nexusd
server and print the synthesized response.

Examples:
  # Ask a question
  nexusd ask "what are my trackers?"

  # Route to a specific agent
  nexusd ask --agent memory "remember that my gym day is Tuesday"

  # Use a different server
  nexusd ask --server http://localhost:9280 "go to settings"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check nexusd server health",
	Long: `Check the health status of the nexusd HTTP server and its agents.

Examples:
  # Check health
  nexusd health

  # Check health on a different server
  nexusd health --server http://localhost:9280`,
	RunE: runHealth,
}

func init() {
	askCmd.Flags().StringVar(&askUserID, "user", "cli", "user id to attribute the request to")
	askCmd.Flags().StringVar(&askTarget, "agent", "", "route directly to this agent, bypassing intent matching")
}

// askRequest matches internal/http AskRequest
type askRequest struct {
	Prompt      string `json:"prompt"`
	UserID      string `json:"userId,omitempty"`
	TargetAgent string `json:"targetAgent,omitempty"`
}

// askResponse is the subset of the router response the CLI prints
type askResponse struct {
	RequestID    string   `json:"request_id"`
	Success      bool     `json:"success"`
	Answer       string   `json:"answer"`
	Warnings     []string `json:"warnings,omitempty"`
	ActionDrafts []struct {
		Type                 string `json:"type"`
		Title                string `json:"title"`
		SafetyLevel          string `json:"safety_level"`
		RequiresConfirmation bool   `json:"requires_confirmation"`
	} `json:"action_drafts,omitempty"`
}

// healthResponse matches internal/http HealthResponse
type healthResponse struct {
	Status string          `json:"status"`
	Agents map[string]bool `json:"agents,omitempty"`
}

// runAsk handles the ask command
func runAsk(cmd *cobra.Command, args []string) error {
	reqBody := askRequest{
		Prompt:      strings.Join(args, " "),
		UserID:      askUserID,
		TargetAgent: askTarget,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/ask", serverURL)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var askResp askResponse
	if err := json.NewDecoder(resp.Body).Decode(&askResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Println(askResp.Answer)
	for _, draft := range askResp.ActionDrafts {
		confirm := ""
		if draft.RequiresConfirmation {
			confirm = " (requires confirmation)"
		}
		fmt.Fprintf(os.Stderr, "[action] %s: %s [%s]%s\n", draft.Type, draft.Title, draft.SafetyLevel, confirm)
	}
	for _, w := range askResp.Warnings {
		fmt.Fprintf(os.Stderr, "[warning] %s\n", w)
	}

	if !askResp.Success {
		return fmt.Errorf("request %s failed", askResp.RequestID)
	}
	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", url, err)
		return err
	}
	defer resp.Body.Close()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", health.Status)
	fmt.Printf("Server URL: %s\n", serverURL)
	for id, healthy := range health.Agents {
		state := "healthy"
		if !healthy {
			state = "unhealthy"
		}
		fmt.Printf("  %-14s %s\n", id, state)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server degraded (status %d)", resp.StatusCode)
	}
	return nil
}
