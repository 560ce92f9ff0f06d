package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/worldmonitor/gatewayd/pkg/config"
	"github.com/worldmonitor/gatewayd/pkg/dispatch"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show status of a running gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		url := fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Port, dispatch.LocalStatusPath)
		client := &http.Client{Timeout: 3 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("gateway not reachable on port %d: %w", cfg.Port, err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if statusJSON {
			fmt.Println(string(body))
			return nil
		}

		var status map[string]any
		if err := json.Unmarshal(body, &status); err != nil {
			return fmt.Errorf("unexpected response from gateway: %w", err)
		}
		fmt.Printf("mode:          %v\n", status["mode"])
		fmt.Printf("port:          %v\n", status["port"])
		fmt.Printf("api directory: %v\n", status["apiDir"])
		fmt.Printf("remote origin: %v\n", status["remoteOrigin"])
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw JSON status")
	rootCmd.AddCommand(statusCmd)
}
