// ABOUTME: Entry point for the nubarmory admin backend
// ABOUTME: Serves the admin API and pages, writes starter config, and checks health

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/nubarmory/internal/config"
	"github.com/2389/nubarmory/internal/server"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
             _
 _ __  _   _| |__   __ _ _ __ _ __ ___   ___  _ __ _   _
| '_ \| | | | '_ \ / _' | '__| '_ ' _ \ / _ \| '__| | | |
| | | | |_| | |_) | (_| | |  | | | | | | (_) | |  | |_| |
|_| |_|\__,_|_.__/ \__,_|_|  |_| |_| |_|\___/|_|   \__, |
                                                   |___/
`

// getDataPath returns the path to the nubarmory data directory.
// Priority: XDG_DATA_HOME/nubarmory > ~/.local/share/nubarmory
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "nubarmory")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: nubarmory <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the admin server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog := setupLogger(cfg.Logging)
	defer closeLog()
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s (%s)\n", cfg.Database.Path, cfg.Database.Driver)
	green.Print("    ▶ ")
	fmt.Printf("Verifier:  %s\n", cfg.Auth.Verifier)
	if !cfg.Auth.CookieSecure() {
		yellow.Println("    ! secure_cookie is off; sessions travel over plain HTTP")
	}
	if cfg.RateLimit.Enabled() {
		green.Print("    ▶ ")
		fmt.Printf("Redis:     %s ", cfg.RateLimit.RedisAddr)
		gray.Printf("(%d logins/min)\n", cfg.RateLimit.LoginPerMinute)
	}
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	logger.Info("starting nubarmory",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"version", version,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/ready", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("nubarmory configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	defaultDbPath := filepath.Join(getDataPath(), "nubarmory.db")

	outputFile := prompt(reader, "Config file path", config.DefaultPath())

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Auth Configuration ---")
	secureCookie := isYes(prompt(reader, "Serve behind HTTPS (secure cookie)?", "yes"))
	verifier := prompt(reader, "Token verifier (full/edge)", config.VerifierFull)

	fmt.Println("\n--- Rate Limiting ---")
	redisAddr := prompt(reader, "Redis address for login rate limiting (leave empty to disable)", "")

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	var cfg strings.Builder
	cfg.WriteString("# nubarmory configuration\n")
	cfg.WriteString("# Generated by nubarmory init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("  shutdown_timeout: \"5s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("  driver: \"sqlite\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: \"%s\"\n", secret))
	cfg.WriteString(fmt.Sprintf("  secure_cookie: %t\n", secureCookie))
	cfg.WriteString(fmt.Sprintf("  verifier: \"%s\"\n", verifier))
	cfg.WriteString("  token_ttl: \"168h\"\n")
	cfg.WriteString("\n")

	if redisAddr != "" {
		cfg.WriteString("ratelimit:\n")
		cfg.WriteString(fmt.Sprintf("  redis_addr: \"%s\"\n", redisAddr))
		cfg.WriteString("  login_per_minute: 10\n")
		cfg.WriteString("\n")
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))
	cfg.WriteString("\n")

	cfg.WriteString("metrics:\n")
	cfg.WriteString("  enabled: false\n")
	cfg.WriteString("  path: \"/metrics\"\n")

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file carries the signing secret.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  nubarmory serve\n")

	return nil
}

// generateSecret returns a random HS256 signing secret, base64 encoded.
// 48 random bytes encode to 64 characters, well above the minimum.
func generateSecret() (string, error) {
	secretBytes := make([]byte, 48)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
