package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"netrelay-go/internal/xclock"
	"netrelay-go/pkg/logger"
	"netrelay-go/source/session"
	"netrelay-go/source/transport"
)

func newServeCmd() *cobra.Command {
	var (
		port         uint16
		maxPeers     int
		fakeLoss     float32
		fakeLatency  uint64
		tickMillis   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run in ServerMode, accepting connections on --port.",
		RunE: func(c *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(logger.LevelDebug)
			}

			m := startMetricsServer(metricsAddr)

			cfg := session.DefaultConfig()
			cfg.ServerPort = port
			cfg.MaxPeers = maxPeers

			sock, err := transport.Listen(nil)
			if err != nil {
				return err
			}

			peer := session.NewPeer(cfg, xclock.NewSystem(), sock, m, loggingCallbacks{})
			if err := peer.SetServerMode(); err != nil {
				return err
			}
			if fakeLoss > 0 {
				peer.SetFakePacketLoss(fakeLoss)
			}
			if fakeLatency > 0 {
				peer.SetFakeLatency(fakeLatency)
			}

			sig, stop := notifyContext()
			defer stop()

			ticker := time.NewTicker(time.Duration(tickMillis) * time.Millisecond)
			defer ticker.Stop()

			logger.Info("netrelayd serve: listening on port %d", port)
			for {
				select {
				case <-sig:
					logger.Info("netrelayd serve: shutting down")
					return peer.Close()
				case <-ticker.C:
					if err := peer.UpdateNetwork(); err != nil {
						logger.Error("netrelayd serve: %v", err)
					}
				}
			}
		},
	}

	cmd.Flags().Uint16Var(&port, "port", session.DefaultConfig().ServerPort, "UDP port to bind")
	cmd.Flags().IntVar(&maxPeers, "max-peers", session.DefaultConfig().MaxPeers, "maximum number of connected peers")
	cmd.Flags().Float32Var(&fakeLoss, "fake-loss", 0, "probability in [0,1] of dropping an outbound datagram, for testing")
	cmd.Flags().Uint64Var(&fakeLatency, "fake-latency-ms", 0, "artificial inbound message delay in milliseconds, for testing")
	cmd.Flags().IntVar(&tickMillis, "tick-ms", 10, "network tick interval in milliseconds")

	return cmd
}

// loggingCallbacks is the default Callbacks implementation for the CLI:
// it just logs connection lifecycle events, since netrelayd itself has
// no game state to drive.
type loggingCallbacks struct {
	session.NoopCallbacks
}

func (loggingCallbacks) OnConnection(peerID uint8) {
	logger.Success("peer %d connected", peerID)
}

func (loggingCallbacks) OnDisconnection(peerID uint8) {
	logger.Info("peer %d disconnected", peerID)
}
