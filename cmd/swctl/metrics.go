package main

import (
	"fmt"

	"github.com/MrEthical07/swclient/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

func (a *app) metricsCmd() *cobra.Command {
	var probes int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Probe the backend and print client metrics in Prometheus text format",
		Long: `Ping the backend --probes times, then print the client's counters and
latency histogram. Useful for a quick look at error classification and
round-trip latency from this machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg.Metrics.Enabled = true
			a.cfg.Metrics.EnableLatencyHistograms = true
			c, err := a.api()
			if err != nil {
				return err
			}
			for i := 0; i < probes; i++ {
				// Failures are counted by kind; keep probing.
				_ = c.Ping(cmd.Context())
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), prometheus.NewPrometheusExporter(c).Render())
			return err
		},
	}
	cmd.Flags().IntVar(&probes, "probes", 3, "number of pings before rendering")
	return cmd
}
