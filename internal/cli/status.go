package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://127.0.0.1:38800"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the attune daemon is running",
	RunE:  runStatus,
}

// serverURL resolves the daemon address.
// Respects ATTUNE_URL env var, falls back to http://127.0.0.1:38800.
func serverURL() string {
	if url := os.Getenv("ATTUNE_URL"); url != "" {
		return url
	}
	return defaultServerURL
}

func runStatus(cmd *cobra.Command, args []string) error {
	url := serverURL()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url + "/api/health")
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check at %s: status %d", url, resp.StatusCode)
	}

	var health struct {
		Status         string  `json:"status"`
		Version        string  `json:"version"`
		Uptime         float64 `json:"uptime"`
		DB             bool    `json:"db"`
		DBPath         string  `json:"db_path"`
		ActiveSessions int     `json:"active_sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	up := time.Duration(health.Uptime * float64(time.Second)).Round(time.Second)
	fmt.Printf("attune %s at %s\n", health.Version, url)
	fmt.Printf("status: %s, up %s\n", health.Status, up)
	if health.DB {
		fmt.Printf("database: %s\n", health.DBPath)
	} else {
		fmt.Printf("database: %s (unreachable)\n", health.DBPath)
	}
	fmt.Printf("active sessions: %d\n", health.ActiveSessions)
	return nil
}
