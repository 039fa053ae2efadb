package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/ui"
)

var peersTimeout time.Duration

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Find other bleradar instances on the local network",
	Long: `Browse mDNS for bleradar instances serving snapshots (run --serve) and
list their snapshot endpoints.`,
	Example: `  bleradar peers
  bleradar peers --timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runPeers,
}

func init() {
	peersCmd.Flags().DurationVar(&peersTimeout, "timeout", discovery.DefaultPeerTimeout, "How long to browse")
}

func runPeers(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewPeerScanner()
	scanner.Timeout = peersTimeout

	peers, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("peer discovery failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(peers) == 0 {
		_, _ = fmt.Fprintln(out, "No peers found")
		return nil
	}

	rows := make([][]string, len(peers))
	for i, p := range peers {
		rows[i] = []string{
			p.Instance,
			p.BaseURL() + p.GetMetadata("path"),
			strings.Join(p.Adapters(), ", "),
			p.GetMetadata("version"),
		}
	}
	headers := []string{"INSTANCE", "ENDPOINT", "ADAPTERS", "VERSION"}

	if f, ok := out.(*os.File); !ok || !ui.IsTerminal(f) {
		_, _ = fmt.Fprintln(out, strings.Join(headers, "\t"))
		for _, r := range rows {
			_, _ = fmt.Fprintln(out, strings.Join(r, "\t"))
		}
		return nil
	}

	t := table.New().Headers(headers...).Rows(rows...)
	_, _ = fmt.Fprintln(out, t.Render())
	return nil
}
