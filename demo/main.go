package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"searchbot/config"
	"searchbot/demo/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment
	_ = godotenv.Load()

	// Parse command-line flags
	serverURL := flag.String("url", config.GetEnvOrDefault("SEARCHBOT_URL", "http://localhost:8080"), "Chat server URL")
	session := flag.String("session", "", "Session id to resume (default: new session)")
	flag.Parse()

	id := *session
	if id == "" {
		id = uuid.NewString()
	}

	// Create TUI model
	m := tui.NewModel(*serverURL, id)

	// Create the tea program
	program := tea.NewProgram(m)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	// Run the program
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Session: %s\n", id)
}
