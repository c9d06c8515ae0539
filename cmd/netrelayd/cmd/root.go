// Package cmd wires the netrelayd CLI: persistent flags shared by every
// subcommand, plus serve/connect. Structured the way
// malbeclabs-doublezero/e2e/internal/devnet/cmd's root command does
// (exit-code-returning Run, flags bound to package-level vars consumed
// by RunE closures).
package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"netrelay-go/pkg/logger"
	"netrelay-go/pkg/metrics"
)

// ExitCode mirrors the convention used elsewhere in the retrieved
// corpus for a main() that wants a plain integer to pass to os.Exit.
type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1
)

var (
	verbose     bool
	metricsAddr string
)

// Run builds the root command and executes it, returning a process
// exit code.
func Run() int {
	root := &cobra.Command{
		Use:   "netrelayd",
		Short: "Reliable UDP transport core: run a relay server or connect as a client.",
		RunE: func(c *cobra.Command, args []string) error {
			return c.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables metrics)")

	root.AddCommand(newServeCmd(), newConnectCmd())

	if err := root.Execute(); err != nil {
		return int(exitCodeError)
	}
	return int(exitCodeSuccess)
}

// startMetricsServer registers metrics against its own private registry
// (so repeated test invocations of Run never collide with the global
// default registry, matching malbeclabs-doublezero/client/doublezerod's
// cmd/doublezerod/main.go's own promauto.With(registry) pattern) and, if
// addr is non-empty, starts a background promhttp listener.
func startMetricsServer(addr string) *metrics.Metrics {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if addr == "" {
		return m
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server on %s stopped: %v", addr, err)
		}
	}()
	logger.Info("metrics listening on %s", addr)
	return m
}

func notifyContext() (chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
