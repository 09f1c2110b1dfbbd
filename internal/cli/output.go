package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": err.Error(),
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case ServerStatus:
		o.printServerStatus(v)
	case PlayerRecord:
		o.printPlayerRecord(v)
	case MatchList:
		o.printMatchList(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// ServerStatus response type (matches API)
type ServerStatus struct {
	Connections int          `json:"connections"`
	QueueDepth  int          `json:"queue_depth"`
	Waiting     []string     `json:"waiting"`
	ActiveMatch *ActiveMatch `json:"active_match,omitempty"`
}

// ActiveMatch response type
type ActiveMatch struct {
	ID         string         `json:"id"`
	Phase      string         `json:"phase"`
	Players    [2]string      `json:"players"`
	Spectators []string       `json:"spectators,omitempty"`
	ShipsLeft  map[string]int `json:"ships_left,omitempty"`
}

// PlayerRecord response type
type PlayerRecord struct {
	Name       string  `json:"name"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	ShotsFired int     `json:"shots_fired"`
	Hits       int     `json:"hits"`
	Accuracy   float64 `json:"accuracy"`
}

// MatchSummary response type
type MatchSummary struct {
	ID         string    `json:"ID"`
	Players    [2]string `json:"Players"`
	Winner     string    `json:"Winner"`
	Loser      string    `json:"Loser"`
	Shots      int       `json:"Shots"`
	StartedAt  time.Time `json:"StartedAt"`
	FinishedAt time.Time `json:"FinishedAt"`
}

// MatchList wraps the recent matches response
type MatchList struct {
	Matches []MatchSummary `json:"matches"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printServerStatus(s ServerStatus) {
	fmt.Printf("Connections: %d\n", s.Connections)
	fmt.Printf("Queue: %d waiting", s.QueueDepth)
	if len(s.Waiting) > 0 {
		fmt.Printf(" (%s)", strings.Join(s.Waiting, ", "))
	}
	fmt.Println()

	if s.ActiveMatch == nil {
		fmt.Println("Active match: none")
		return
	}

	m := s.ActiveMatch
	fmt.Printf("Active match: %s\n", m.ID)
	fmt.Printf("  Phase: %s\n", m.Phase)
	fmt.Printf("  Players: %s vs %s\n", m.Players[0], m.Players[1])
	for _, p := range m.Players {
		if left, ok := m.ShipsLeft[p]; ok {
			fmt.Printf("  Ships left (%s): %d\n", p, left)
		}
	}
	if len(m.Spectators) > 0 {
		fmt.Printf("  Spectators: %s\n", strings.Join(m.Spectators, ", "))
	}
}

func (o *Output) printPlayerRecord(p PlayerRecord) {
	fmt.Printf("Player: %s\n", p.Name)
	fmt.Printf("Record: %d wins, %d losses\n", p.Wins, p.Losses)
	fmt.Printf("Shots: %d fired, %d hits (%.0f%% accuracy)\n", p.ShotsFired, p.Hits, p.Accuracy*100)
}

func (o *Output) printMatchList(l MatchList) {
	if len(l.Matches) == 0 {
		fmt.Println("No matches recorded")
		return
	}

	fmt.Printf("Recent matches (%d):\n", len(l.Matches))
	for _, m := range l.Matches {
		duration := ""
		if !m.FinishedAt.IsZero() && !m.StartedAt.IsZero() {
			duration = fmt.Sprintf(", %s", m.FinishedAt.Sub(m.StartedAt).Round(time.Second))
		}
		fmt.Printf("  %s: %s beat %s (%d shots%s)\n", m.ID, m.Winner, m.Loser, m.Shots, duration)
	}
}
