// Command organizer is the interactive CLI for the multi-agent trip
// organizer. It routes each typed line through the orchestrator, prints
// the reply, and logs history and traces under the configured logs
// directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trailnote/organizer"
	"github.com/trailnote/organizer/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to organizer.toml")
	flag.Parse()

	cfg := config.Load(*configPath)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	if a.shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.shutdown(shutdownCtx)
		}()
	}

	fmt.Println("Multi-Agent Organizer (CLI)")
	fmt.Println("Napisz 'exit' aby zakończyć.")
	fmt.Println()
	fmt.Printf("(log) zapisuję historię do: %s\n\n", a.history.Path())

	tracePath := filepath.Join(a.logsDir,
		fmt.Sprintf("trace_%s.jsonl", time.Now().Format("20060102_150405")))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if low := strings.ToLower(input); low == "exit" || low == "quit" {
			break
		}

		userMsg := organizer.NewMessage("user", input)
		if err := a.history.Append(userMsg); err != nil {
			logger.Warn("history append failed", slog.String("error", err.Error()))
		}

		reply, err := a.orch.Handle(ctx, userMsg)
		if err != nil {
			errMsg := organizer.NewMessage("error", err.Error())
			if logErr := a.history.Append(errMsg); logErr != nil {
				logger.Warn("history append failed", slog.String("error", logErr.Error()))
			}
			fmt.Printf("\n[error] %v\n\n", err)
			continue
		}

		if err := a.history.Append(reply); err != nil {
			logger.Warn("history append failed", slog.String("error", err.Error()))
		}
		if err := organizer.WriteTraceJSONL(tracePath, a.orch.TeamConversation()); err != nil {
			logger.Warn("trace write failed", slog.String("error", err.Error()))
		}

		fmt.Printf("\n[%s] %s\n\n", reply.Sender, reply.Content)
	}
}
