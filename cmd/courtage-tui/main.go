package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/tui"
)

func main() {
	// Optional rates file overlaid on the built-in tariff
	ratesPath := ""
	if len(os.Args) > 1 {
		ratesPath = os.Args[1]
		if _, err := os.Stat(ratesPath); os.IsNotExist(err) {
			fmt.Printf("Error: rates file not found: %s\n", ratesPath)
			os.Exit(1)
		}
	}

	subject := os.Getenv("USER")
	if subject == "" {
		subject = "courtier"
	}
	s := session.Open(session.Identity{Subject: subject, Role: session.RoleBroker}, time.Now())

	p := tea.NewProgram(
		tui.NewModel(ratesPath, s),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	if !s.Closed() {
		_ = s.Close(time.Now())
	}
	if err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
