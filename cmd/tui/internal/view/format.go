package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

const (
	dbTimeout   = 5 * time.Second
	syncTimeout = 2 * time.Minute
)

// FormatTime formats an optional timestamp as YYYY-MM-DD HH:MM, or a dash.
func FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04")
}

// FormatAmount renders the amount and currency recorded for a document.
func FormatAmount(meta processing.Metadata) string {
	amount, _ := meta[processing.MetaAmount].(string)
	if amount == "" {
		return "-"
	}

	currency, _ := meta[processing.MetaCurrency].(string)

	return fmt.Sprintf("%s %s", amount, currency)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

func statusStyle(s processing.Status) string {
	color := lipgloss.Color("250")

	switch s {
	case processing.StatusCompleted:
		color = lipgloss.Color("46")
	case processing.StatusFailed:
		color = lipgloss.Color("196")
	case processing.StatusProcessing:
		color = lipgloss.Color("214")
	case processing.StatusSkipped:
		color = lipgloss.Color("244")
	}

	return lipgloss.NewStyle().Foreground(color).Render(string(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

// SyncCtx returns a context for operations that talk to the remote services.
func SyncCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), syncTimeout)
}
