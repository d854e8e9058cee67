package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"

	"github.com/nstehr/funnel/agent"
	"github.com/nstehr/funnel/config"
	"github.com/nstehr/funnel/defense"
	"github.com/nstehr/funnel/ipc"
	"github.com/nstehr/funnel/journal"
)

const banner = `
 ___ _   _ _  _ _  _ ___ _
| __| | | | \| | \| | __| |
| _|| |_| | .  | .  | _|| |__
|_|  \___/|_|\_|_|\_|___|____|

Milestone-Driven Tower Defence`

func main() {
	configDir := os.Getenv("FUNNEL_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	settings, err := config.Load(configDir)
	if err != nil {
		slog.Error("failed to load config", "dir", configDir, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.Level(),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	builds, err := defense.LoadBuilds(settings.PlansDir)
	if err != nil {
		slog.Error("failed to load builds", "dir", settings.PlansDir, "error", err)
		os.Exit(1)
	}
	if _, ok := builds[settings.Build]; !ok {
		names := make([]string, 0, len(builds))
		for n := range builds {
			names = append(names, n)
		}
		sort.Strings(names)
		slog.Error("unknown build", "build", settings.Build, "available", names)
		os.Exit(1)
	}

	var j *journal.Journal
	if settings.Journal.Enabled {
		j, err = journal.Open(settings.Journal.Driver, settings.Journal.DSN)
		if err != nil {
			// The journal is for review only; play on without it.
			slog.Error("journal disabled", "error", err)
			j = nil
		}
	}
	defer j.Close()

	slog.Info("starting funnel", "build", settings.Build, "doctrine", settings.Doctrine.Name)

	socketPath := settings.SocketPath

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			session := uuid.NewString()
			slog.Info("new connection accepted", "session", session)
			go handleConn(conn, session, settings, builds, j)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(conn net.Conn, session string, settings config.Settings, builds map[string]*defense.Build, j *journal.Journal) {
	c := ipc.NewConnection(conn, nil)
	c.Session = session
	a := agent.New(c, session, settings, builds, j)
	a.Register()
	c.ReadLoop()
}
