package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"

	"chaibuddies/internal/server"
	"chaibuddies/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Println(err)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs fills Options and returns the selected sub-command name.
// With no sub-command the chat front-end is used.
func parseArgs(args []string) (*Options, string, error) {
	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, "", err
	}

	name := "chat"
	if parser.Active != nil {
		name = parser.Active.Name
	}
	if opts.Chat == nil {
		opts.Chat = &ChatCmd{}
	}
	if opts.Serve == nil {
		opts.Serve = &ServeCmd{}
	}
	return opts, name, nil
}

func run(args []string) error {
	opts, name, err := parseArgs(args)
	if err != nil {
		return err
	}

	if name == "serve" {
		return serve(opts)
	}
	return chat(opts)
}

func chat(opts *Options) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	a, err := build(opts.Config, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// The alt screen owns the terminal, so logs go to a file
	logPath := opts.Chat.Log
	if logPath == "" {
		if err := os.MkdirAll(a.dataDir, 0755); err != nil {
			return err
		}
		logPath = filepath.Join(a.dataDir, "chaibuddies.log")
	}
	f, err := tea.LogToFile(logPath, "chaibuddies")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	a.logger.SetOutput(f)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	model := ui.New(ctx, ui.Deps{
		Session:   a.newSession(),
		Backend:   a.backend,
		CallLog:   a.calls,
		ExportDir: a.dataDir,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func serve(opts *Options) error {
	logger := log.New(os.Stderr, "[chaibuddies] ", log.LstdFlags)
	a, err := build(opts.Config, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if opts.Serve.Addr != "" {
		addr = opts.Serve.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(a.registry, a.newSession, server.WithCallLog(a.calls), server.WithLogger(logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return srv.Run(ctx, addr)
}
