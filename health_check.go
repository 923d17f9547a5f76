//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/mc-discord-bots/config"
	"github.com/fenilmodi00/mc-discord-bots/database"
	"github.com/fenilmodi00/mc-discord-bots/models"
	"github.com/fenilmodi00/mc-discord-bots/services"
	"github.com/fenilmodi00/mc-discord-bots/shared"
)

func main() {
	fmt.Printf("🏥 Discord Bots Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	healthScore := 0
	totalTests := 3

	// Test 1: NDB2 API
	fmt.Print("📡 NDB2 API: ")
	factory := shared.NewHTTPClientFactory(cfg.GetNDB2Timeout())
	client := services.NewNDB2Client(cfg.NDB2BaseURL, cfg.NDB2ClientID, factory.CreateOptimizedHTTPClient(cfg.GetNDB2Timeout()), nil)
	if board, err := client.GetLeaderboard(ctx, models.LeaderboardPoints); err != nil {
		fmt.Printf("❌ FAILED (%s)\n", shared.DiagnosticFor(err))
	} else {
		fmt.Printf("✅ OK (%d leaders)\n", len(board.Leaders))
		healthScore++
	}

	// Test 2: Show feeds
	fmt.Print("📰 Show feeds: ")
	feeds := services.NewFeedService(cfg.GetFeeds(), nil)
	if err := feeds.Refresh(ctx); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%d shows)\n", len(feeds.ShowNames()))
		healthScore++
	}

	// Test 3: Database
	fmt.Print("🗄️  Database: ")
	if cfg.DatabaseURL == "" {
		fmt.Println("⏭️  SKIPPED (DATABASE_URL not set)")
		healthScore++
	} else if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		if err := database.HealthCheck(ctx); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Println("✅ OK")
			healthScore++
		}
		database.Close()
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
