package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastkit/fastkit/internal/api"
	"github.com/fastkit/fastkit/internal/cli"
	"github.com/fastkit/fastkit/internal/config"
	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/logger"
	"github.com/fastkit/fastkit/internal/mcp"
	"github.com/fastkit/fastkit/internal/service"
	"github.com/fastkit/fastkit/internal/ui"
)

var version = "1.0.0"

func printHelp() {
	fmt.Printf(`fast-kit - Prompt template library and engineering spec workshop

USAGE:
    fast-kit [OPTIONS] [COMMAND]

OPTIONS:
    --help         Show this help information
    --version      Print version information
    --mcp <kit>    Start an MCP stdio server: prompt-kit or spec-kit
    --api-server   Start the REST API server
    --port         Port for the API server (default: 8080)

COMMANDS:
    (no command)       Start the interactive TUI browser
    list, ls           List prompt templates
    get, show <id>     Show a prompt template
    compose <id>       Validate variables and expand a template
    search <query>     Weighted prompt search
    create, new        Create a custom prompt
    specs              List specification documents
    spec <subcommand>  Spec operations: create, get, validate, export, prompt
    templates          List spec templates
    help               Show CLI command help

EXAMPLES:
    fast-kit                                        # Interactive browser
    fast-kit --mcp prompt-kit                       # Prompt tools over stdio
    fast-kit --mcp spec-kit                         # Spec tools over stdio
    fast-kit --api-server --port 9000               # REST API
    fast-kit compose test_generator --var code=...  # Compose from the CLI
    fast-kit spec create --template adr --title "Use flat files"

STORAGE:
    Default directory: ~/.fast-kit
    Override with: FAST_KIT_DIR=<path>
`)
}

func main() {
	var showVersion bool
	var showHelp bool
	var mcpKit string
	var apiServer bool
	var port int

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.StringVar(&mcpKit, "mcp", "", "Start an MCP stdio server: prompt-kit or spec-kit")
	flag.BoolVar(&apiServer, "api-server", false, "Start the REST API server")
	flag.IntVar(&port, "port", 0, "Port for the API server")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("fast-kit version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if port != 0 {
		cfg.Port = port
	}

	logCfg := logger.DefaultConfig()
	if err := logCfg.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logCfg)
	defer logger.Sync()

	svc, err := service.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing library: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	if mcpKit != "" {
		runMCP(svc, mcpKit)
		return
	}

	if apiServer {
		runAPI(svc, cfg.Port)
		return
	}

	args := flag.Args()
	if len(args) > 0 {
		cliHandler := cli.NewCLI(svc)
		if err := cliHandler.ExecuteCommand(args); err != nil {
			errHandler := errors.NewCLIErrorHandler(cfg.LogLevel == "debug", logger.ForComponent("cli"))
			fmt.Fprintln(os.Stderr, errHandler.FormatError(err))
			os.Exit(1)
		}
		return
	}

	model := ui.NewModel(svc)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMCP(svc *service.Service, kit string) {
	var registry *mcp.Registry
	switch kit {
	case "prompt-kit":
		registry = mcp.NewPromptKitRegistry(svc)
	case "spec-kit":
		registry = mcp.NewSpecKitRegistry(svc)
	default:
		fmt.Fprintf(os.Stderr, "Unknown MCP kit %q: use prompt-kit or spec-kit\n", kit)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer("fast-kit "+kit, version, registry)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func runAPI(svc *service.Service, port int) {
	server := api.NewAPIServer(svc, port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}
}
