package cli

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <name>",
		Short: "Connect to the game server as a player",
		Long: `Connect to the game server's TCP port and play interactively.

Identifies as <name>, then pipes stdin lines to the server and prints
every server line as it arrives. Type HELP-style commands directly:

  PLACE A1 H 5
  FIRE B4
  CHAT good shot
  QUIT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cfg.GameAddr, args[0])
		},
	}
}

func runPlay(addr, name string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("Connected to %s\n", addr)

	// Receiver goroutine prints server lines as they arrive, so
	// broadcasts are never stuck behind a pending stdin read.
	done := make(chan struct{})
	go func() {
		defer close(done)
		server := bufio.NewScanner(conn)
		for server.Scan() {
			fmt.Println(server.Text())
		}
	}()

	if _, err := fmt.Fprintf(conn, "IDENTIFY %s\n", name); err != nil {
		return fmt.Errorf("failed to identify: %w", err)
	}

	quit := false
	stdin := bufio.NewScanner(os.Stdin)
	for !quit && stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
			break
		}
		quit = strings.EqualFold(line, "QUIT")
	}

	// Stdin closing counts as quitting
	if !quit {
		_, _ = fmt.Fprintln(conn, "QUIT")
	}

	// Wait for the server to finish sending (BYE on quit, or the
	// remote close that ended the receiver).
	<-done
	fmt.Println("Disconnected")
	return nil
}
