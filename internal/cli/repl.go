package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/hession/contextseek/internal/config"
	"github.com/hession/contextseek/internal/search"
)

const Version = "0.1.0"

// Run starts the CLI interactive interface
func Run(cfg *config.Config) error {
	// Display welcome message
	printWelcome()

	session, err := NewSession(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer session.Close()

	// Start REPL
	return runREPL(session, cfg)
}

// printWelcome prints welcome message
func printWelcome() {
	fmt.Printf("\n%s🔎 ContextSeek v%s%s - Find the original source of quotes, images and clips\n", colorCyan, Version, colorReset)
	fmt.Printf("%sType a quote to search it, /help for help, /exit to quit%s\n\n", colorGray, colorReset)
}

// getHistoryFilePath returns the history file path
func getHistoryFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	historyDir := filepath.Join(homeDir, ".contextseek")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return ""
	}
	return filepath.Join(historyDir, "history")
}

// runREPL runs the interactive REPL with readline support
func runREPL(session *Session, cfg *config.Config) error {
	// Configure readline
	rlConfig := &readline.Config{
		Prompt:          fmt.Sprintf("%ssearch> %s", colorGreen, colorReset),
		HistoryFile:     getHistoryFilePath(),
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:      true,
		DisableAutoSaveHistory: false,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\n\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
		cancel()
		session.Close()
		rl.Close()
		os.Exit(0)
	}()

	for {
		// Read user input with readline (supports backspace, arrow keys, history)
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C pressed, ask for confirmation
				fmt.Printf("\n%sPress Ctrl+C again or type /exit to quit%s\n", colorYellow, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Printf("\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		// Handle built-in commands
		if strings.HasPrefix(input, "/") {
			if handleCommand(ctx, input, session) {
				continue
			}
			return nil // /exit command
		}

		// Anything else is a text search
		if err := session.SearchText(ctx, input); err != nil {
			printSessionError(session.out, err)
		}
		fmt.Println()
	}
}

// handleCommand handles built-in commands, returns true to continue loop, false to exit
func handleCommand(ctx context.Context, cmd string, session *Session) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		printHelp()
		return true

	case "/text":
		if len(parts) < 2 {
			fmt.Printf("%sUsage: /text <quote or snippet>%s\n", colorYellow, colorReset)
			return true
		}
		if err := session.SearchText(ctx, strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))); err != nil {
			printSessionError(session.out, err)
		}
		return true

	case "/image":
		path, faces, social, err := parseImageArgs(parts[1:])
		if err != nil {
			fmt.Printf("%s%v%s\n", colorYellow, err, colorReset)
			return true
		}
		if err := session.SearchImage(ctx, path, faces, social); err != nil {
			printSessionError(session.out, err)
		}
		return true

	case "/video":
		if len(parts) != 2 {
			fmt.Printf("%sUsage: /video <url or file>%s\n", colorYellow, colorReset)
			return true
		}
		if err := session.SearchVideo(ctx, parts[1]); err != nil {
			printSessionError(session.out, err)
		}
		return true

	case "/sources":
		if len(parts) != 2 {
			fmt.Printf("%sCurrent sources: %s%s\n", colorGray, session.SourcesString(), colorReset)
			fmt.Printf("%sUsage: /sources article,book,video,movie,study,social | /sources all%s\n", colorYellow, colorReset)
			return true
		}
		if err := session.SetSources(parts[1]); err != nil {
			printSessionError(session.out, err)
		} else {
			fmt.Printf("%s✅ Sources set to: %s%s\n", colorGreen, session.SourcesString(), colorReset)
		}
		return true

	case "/config":
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("%s❌ Failed to load config: %v%s\n", colorRed, err, colorReset)
		} else {
			fmt.Println(cfg.String())
		}
		return true

	case "/exit", "/quit", "/q":
		fmt.Printf("%sGoodbye! 👋%s\n", colorCyan, colorReset)
		return false

	default:
		fmt.Printf("%sUnknown command: %s (type /help for help)%s\n", colorYellow, command, colorReset)
		return true
	}
}

// parseImageArgs parses "/image <path> [--no-faces] [--no-social]" arguments
func parseImageArgs(args []string) (path string, faces, social bool, err error) {
	faces, social = true, true
	for _, arg := range args {
		switch arg {
		case "--no-faces":
			faces = false
		case "--no-social":
			social = false
		default:
			if path != "" {
				return "", false, false, fmt.Errorf("usage: /image <path> [--no-faces] [--no-social]")
			}
			path = arg
		}
	}
	if path == "" {
		return "", false, false, fmt.Errorf("usage: /image <path> [--no-faces] [--no-social]")
	}
	return path, faces, social, nil
}

// printSessionError reports a failed command without breaking the loop
func printSessionError(w io.Writer, err error) {
	var verr *search.ValidationError
	switch {
	case errors.Is(err, search.ErrBusy):
		fmt.Fprintf(w, "%s⏳ %v%s\n", colorYellow, err, colorReset)
	case errors.As(err, &verr):
		fmt.Fprintf(w, "%s⚠️  %v%s\n", colorYellow, err, colorReset)
	default:
		fmt.Fprintf(w, "%s❌ %v%s\n", colorRed, err, colorReset)
	}
}

// printHelp prints available commands
func printHelp() {
	fmt.Printf(`%sCommands:%s
  <text>                               Search the original source of a quote or snippet
  /text <text>                         Same as above, explicit form
  /image <path> [--no-faces] [--no-social]
                                       Reverse image search a local file
  /video <url or file>                 Trace a clip back to its full video
  /sources <tags|all>                  Set source filters for text searches
  /config                              Show current configuration
  /help                                Show this help
  /exit                                Quit
`, colorCyan, colorReset)
}
