// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iyunix/go-assistant/internal/config"
	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/services"
	"github.com/iyunix/go-assistant/internal/services/ai"
	"github.com/iyunix/go-assistant/internal/services/chat"
)

// Sends a fixed prompt to the configured completion backend a few times and
// reports latency, so a deployment's AI settings can be checked in isolation.
func main() {
	runs := flag.Int("runs", 3, "number of completion requests")
	prompt := flag.String("prompt", "What is the answer to life, universe and everything?", "prompt to send")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	services.InitLogger(os.Stderr, cfg.LogLevel, "text")

	aiConfig := cfg.Completion()
	provider, err := ai.NewProvider(aiConfig)
	if err != nil {
		log.Fatalf("❌ provider: %v", err)
	}
	svc := ai.NewService(provider, aiConfig, services.NewLogger("diagnostic"))

	fmt.Printf("🚀 Testing %s (%s), %d run(s)\n", provider.Name(), aiConfig.Model, *runs)
	history := []domain.Message{domain.UserMessage(*prompt)}

	var total time.Duration
	failures := 0
	for i := 1; i <= *runs; i++ {
		start := time.Now()
		reply := svc.Complete(context.Background(), history)
		elapsed := time.Since(start)
		total += elapsed

		if !reply.OK() {
			failures++
			fmt.Printf("❌ run %d failed after %v: %v\n", i, elapsed, reply.Err)
			continue
		}
		fmt.Printf("✅ run %d in %v: %s\n", i, elapsed, chat.TruncateText(reply.Text, 120))
	}

	if *runs > 0 {
		fmt.Printf("📊 average %v, %d/%d failed\n", total/time.Duration(*runs), failures, *runs)
	}
	if failures > 0 {
		os.Exit(1)
	}
}
