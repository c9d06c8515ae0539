package cmd

import (
	"net"
	"time"

	"github.com/spf13/cobra"

	"netrelay-go/internal/xclock"
	"netrelay-go/pkg/logger"
	"netrelay-go/source/session"
	"netrelay-go/source/transport"
)

func newConnectCmd() *cobra.Command {
	var (
		host        string
		port        uint16
		discover    bool
		tickMillis  int
		fakeLoss    float32
		fakeLatency uint64
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a server, either directly (--host) or via broadcast discovery (--discover).",
		RunE: func(c *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(logger.LevelDebug)
			}

			m := startMetricsServer(metricsAddr)
			cfg := session.DefaultConfig()
			cfg.ServerPort = port

			sock, err := transport.Listen(nil)
			if err != nil {
				return err
			}

			peer := session.NewPeer(cfg, xclock.NewSystem(), sock, m, loggingCallbacks{})
			if fakeLoss > 0 {
				peer.SetFakePacketLoss(fakeLoss)
			}
			if fakeLatency > 0 {
				peer.SetFakeLatency(fakeLatency)
			}

			if discover {
				if err := peer.FindServers(); err != nil {
					return err
				}
				logger.Info("netrelayd connect: searching for servers on port %d", port)
			} else {
				if err := peer.ConnectTo(host, port); err != nil {
					return err
				}
				logger.Info("netrelayd connect: dialing %s:%d", host, port)
			}

			sig, stop := notifyContext()
			defer stop()

			ticker := time.NewTicker(time.Duration(tickMillis) * time.Millisecond)
			defer ticker.Stop()

			connectedOnce := false
			for {
				select {
				case <-sig:
					logger.Info("netrelayd connect: shutting down")
					peer.DisconnectAll()
					return peer.Close()
				case <-ticker.C:
					if err := peer.UpdateNetwork(); err != nil {
						logger.Error("netrelayd connect: %v", err)
						continue
					}
					if discover && peer.NetworkState() == session.Searching {
						if servers := peer.DiscoveredServers(); len(servers) > 0 && !connectedOnce {
							connectedOnce = true
							first := servers[0]
							logger.Info("netrelayd connect: found server at %s, connecting", first.Address)
							if err := peer.ConnectTo(hostOf(first.Address), first.Address.Port()); err != nil {
								logger.Error("netrelayd connect: %v", err)
							}
						}
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server host to connect to")
	cmd.Flags().Uint16Var(&port, "port", session.DefaultConfig().ServerPort, "server UDP port")
	cmd.Flags().BoolVar(&discover, "discover", false, "discover a server via broadcast instead of dialing --host directly")
	cmd.Flags().Float32Var(&fakeLoss, "fake-loss", 0, "probability in [0,1] of dropping an outbound datagram, for testing")
	cmd.Flags().Uint64Var(&fakeLatency, "fake-latency-ms", 0, "artificial inbound message delay in milliseconds, for testing")
	cmd.Flags().IntVar(&tickMillis, "tick-ms", 10, "network tick interval in milliseconds")

	return cmd
}

func hostOf(addr interface{ UDPAddr() *net.UDPAddr }) string {
	return addr.UDPAddr().IP.String()
}
