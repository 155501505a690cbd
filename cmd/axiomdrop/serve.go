package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/platform/tui"
	"github.com/vovakirdan/axiom-drop/internal/platform/ws"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and websocket servers",
	Long: `Start servers that let players connect remotely.

SSH: each connection gets its own session with the intro, level picker and
stats. Progress is kept per SSH user name.

Websocket: clients list levels with GET /levels, read progress with
GET /progress?player=NAME and play with GET /play?level=N&player=NAME,
which upgrades to a websocket streaming snapshots and events.

Pass an empty address to disable a server.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.axiomdrop/host_key

Examples:
  axiomdrop serve                        # SSH on :23234, websocket on :8080
  axiomdrop serve --ssh :2222 --ws ""    # SSH only
  axiomdrop serve --db ./progress.db

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port, empty to disable)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", ":8080", "Websocket server address (host:port, empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	if flagSSHAddr == "" && flagWSAddr == "" {
		fail("nothing to serve: both --ssh and --ws are empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	logger, closer, err := newLogger("axiomdrop", false)
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open progress database, progress will not be saved", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	// Both hosts share one record per player.
	players := storage.NewProgressRegistry(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, serve func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serve(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				stop()
			}
		}()
	}

	if flagSSHAddr != "" {
		sshCfg := tui.SSHServerConfig{
			Address:     flagSSHAddr,
			HostKeyPath: flagHostKey,
			IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		}
		server, sshErr := tui.NewSSHServer(sshCfg, cfg, store, players, logger.WithPrefix("ssh"))
		if sshErr != nil {
			fail("creating SSH server: %v", sshErr)
		}
		fmt.Printf("SSH server on %s (connect with: ssh localhost -p %s)\n", sshCfg.Address, portOf(sshCfg.Address))
		run("ssh", server.ListenAndServe)
	}

	if flagWSAddr != "" {
		wsCfg := ws.DefaultServerConfig()
		wsCfg.Address = flagWSAddr
		server := ws.NewServer(wsCfg, cfg, store, players, logger.WithPrefix("ws"))
		fmt.Printf("Websocket server on %s\n", wsCfg.Address)
		run("ws", server.ListenAndServe)
	}

	fmt.Println("Press Ctrl+C to stop")
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		fail("%v", err)
	}
}

// portOf returns the port part of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
