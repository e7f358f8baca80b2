package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vivocha/vubsub/internal/bus"
	cfgpkg "github.com/vivocha/vubsub/internal/config"
	"github.com/vivocha/vubsub/internal/runtime"
	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
	logpkg "github.com/vivocha/vubsub/pkg/log"
)

func main() {
	// Respect VUBSUB_LOG_LEVEL for CLI output
	level := os.Getenv("VUBSUB_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "vubsub",
		Short: "vubsub message bus CLI",
		Long:  "vubsub is a pub/sub message bus over bounded local logs. This CLI publishes, subscribes and inspects presence.",
	}
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	rootCmd.PersistentFlags().String("config", os.Getenv("VUBSUB_CONFIG"), "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().String("fsync", "always", "Fsync mode: always|interval|never")
	rootCmd.PersistentFlags().String("ns", "", "Namespace (default from config)")

	openRuntime := func(cmd *cobra.Command) (*runtime.Runtime, cfgpkg.Config, error) {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := cfgpkg.Load(cfgPath)
		if err != nil {
			return nil, cfgpkg.Config{}, err
		}
		cfgpkg.FromEnv(&cfg)

		fsyncMode, _ := cmd.Flags().GetString("fsync")
		mode := pebblestore.FsyncModeAlways
		switch fsyncMode {
		case "never":
			mode = pebblestore.FsyncModeNever
		case "interval":
			mode = pebblestore.FsyncModeInterval
		case "always":
			mode = pebblestore.FsyncModeAlways
		default:
			return nil, cfgpkg.Config{}, fmt.Errorf("invalid --fsync; use always|interval|never")
		}

		dataDir, _ := cmd.Flags().GetString("data-dir")
		if dataDir == "" {
			dataDir = cfgpkg.DefaultDataDir()
		}
		rt, err := runtime.Open(runtime.Options{DataDir: dataDir, Fsync: mode, Config: cfg})
		if err != nil {
			return nil, cfgpkg.Config{}, err
		}
		return rt, cfg, nil
	}

	// send
	sendCmd := &cobra.Command{
		Use:   "send <channel> [data]",
		Short: "Publish a message on a channel",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ns, _ := cmd.Flags().GetString("ns")
			from, _ := cmd.Flags().GetString("from")
			kind, _ := cmd.Flags().GetString("type")
			var data []byte
			if len(args) == 2 {
				data = []byte(args[1])
			}
			msg, err := bus.Send(cmd.Context(), rt, ns, args[0], from, kind, data)
			if err != nil {
				return err
			}
			fmt.Println("position:", msg.Position)
			return nil
		},
	}
	sendCmd.Flags().String("from", "cli", "Sender name")
	sendCmd.Flags().String("type", "", "Message type")
	rootCmd.AddCommand(sendCmd)

	// listen
	listenCmd := &cobra.Command{
		Use:   "listen <channel>",
		Short: "Subscribe to a channel and print messages until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ns, _ := cmd.Flags().GetString("ns")
			after, _ := cmd.Flags().GetUint64("after")
			filter, _ := cmd.Flags().GetString("filter")

			reg := bus.NewRegistry(rt, logger)
			defer reg.Close(context.Background())
			client, err := reg.Register(ctx, ns, nil)
			if err != nil {
				return err
			}
			sub, err := client.Join(ctx, args[0], bus.JoinOptions{After: after, Filter: filter})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			for {
				select {
				case <-ctx.Done():
					sub.Close()
					return nil
				case ev, ok := <-sub.Events():
					if !ok {
						return nil
					}
					switch ev.Kind {
					case bus.EventReady:
						logger.Info("listening", logpkg.Str("channel", args[0]), logpkg.Str("client", client.ID()))
					case bus.EventData:
						_ = enc.Encode(ev.Message)
					case bus.EventError:
						logger.Warn("subscription error", logpkg.Err(ev.Err))
					case bus.EventClose:
						return nil
					}
				}
			}
		},
	}
	listenCmd.Flags().Uint64("after", 0, "Resume delivery after this position")
	listenCmd.Flags().String("filter", "", "CEL delivery filter")
	rootCmd.AddCommand(listenCmd)

	// presence
	presenceCmd := &cobra.Command{Use: "presence", Short: "Presence operations"}
	presenceListCmd := &cobra.Command{
		Use:   "list <channel>",
		Short: "List clients present on a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			ns, _ := cmd.Flags().GetString("ns")
			rows, err := bus.Find(rt, ns, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			for _, r := range rows {
				_ = enc.Encode(r)
			}
			return nil
		},
	}
	presenceCountCmd := &cobra.Command{
		Use:   "count <channel>",
		Short: "Count clients present on a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			ns, _ := cmd.Flags().GetString("ns")
			n, err := bus.Count(rt, ns, args[0])
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	presenceCmd.AddCommand(presenceListCmd, presenceCountCmd)
	rootCmd.AddCommand(presenceCmd)

	// namespace init
	nsCmd := &cobra.Command{Use: "namespace", Short: "Namespace operations"}
	nsInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap a namespace log",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			ns, _ := cmd.Flags().GetString("ns")
			l, err := rt.EnsureLog(ns)
			if err != nil {
				return err
			}
			fmt.Println("namespace ready:", l.Namespace())
			return nil
		},
	}
	nsCmd.AddCommand(nsInitCmd)
	rootCmd.AddCommand(nsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
