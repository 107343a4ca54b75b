// Command drivewatch registers and stops Drive push-notification channels.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"readshelf/internal/config"
	"readshelf/internal/drive"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.MustLoad()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "register":
		registerFlags := flag.NewFlagSet("register", flag.ExitOnError)
		folderID := registerFlags.String("folder-id", cfg.DriveFolderID, "Drive folder to watch")
		address := registerFlags.String("address", "", "HTTPS callback address")
		ttl := registerFlags.Duration("ttl", 0, "Requested channel lifetime (default: Drive's)")
		registerFlags.Parse(os.Args[2:])

		if *folderID == "" || *address == "" {
			fmt.Println("Error: --folder-id and --address are required")
			os.Exit(1)
		}
		runRegister(ctx, cfg, *folderID, *address, *ttl)
	case "stop":
		stopFlags := flag.NewFlagSet("stop", flag.ExitOnError)
		channelID := stopFlags.String("channel-id", "", "Channel to stop")
		resourceID := stopFlags.String("resource-id", "", "Resource id returned at registration (looked up in Redis when omitted)")
		stopFlags.Parse(os.Args[2:])

		if *channelID == "" {
			fmt.Println("Error: --channel-id is required")
			os.Exit(1)
		}
		runStop(ctx, cfg, *channelID, *resourceID)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newWatcher(ctx context.Context, cfg *config.Config) *drive.GoogleDrive {
	g, err := drive.NewGoogleDrive(ctx, cfg.Google)
	if err != nil {
		log.Fatalf("Failed to create Drive client: %v", err)
	}
	return g
}

// openRegistry returns nil when Redis is not configured or unreachable.
func openRegistry(cfg *config.Config) *drive.ChannelRegistry {
	if cfg.RedisURL == "" {
		return nil
	}
	registry, err := drive.NewChannelRegistry(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️ Channel registry unavailable: %v", err)
		return nil
	}
	return registry
}

func runRegister(ctx context.Context, cfg *config.Config, folderID, address string, ttl time.Duration) {
	ch, err := newWatcher(ctx, cfg).WatchFolder(ctx, folderID, address, ttl)
	if err != nil {
		log.Fatalf("Register channel: %v", err)
	}

	fmt.Printf("Channel ID:  %s\n", ch.ID)
	fmt.Printf("Resource ID: %s\n", ch.ResourceID)
	if !ch.Expiration.IsZero() {
		fmt.Printf("Expires:     %s\n", ch.Expiration.Format(time.RFC3339))
	}

	if registry := openRegistry(cfg); registry != nil {
		defer registry.Close()
		if err := registry.Save(ctx, ch); err != nil {
			log.Printf("⚠️ Channel registered but not saved: %v", err)
		}
	}
}

func runStop(ctx context.Context, cfg *config.Config, channelID, resourceID string) {
	registry := openRegistry(cfg)
	if registry != nil {
		defer registry.Close()
	}

	if resourceID == "" {
		if registry == nil {
			log.Fatal("--resource-id is required when Redis is not configured")
		}
		ch, err := registry.Get(ctx, channelID)
		if err != nil {
			log.Fatalf("Look up channel: %v", err)
		}
		resourceID = ch.ResourceID
	}

	if err := newWatcher(ctx, cfg).StopChannel(ctx, channelID, resourceID); err != nil {
		log.Fatalf("Stop channel: %v", err)
	}
	if registry != nil {
		if err := registry.Delete(ctx, channelID); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}
	fmt.Printf("Channel %s stopped\n", channelID)
}

func printUsage() {
	fmt.Println("drivewatch - manage Drive push-notification channels")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  drivewatch register --folder-id=<id> --address=<url> [--ttl=<duration>]")
	fmt.Println("  drivewatch stop --channel-id=<id> [--resource-id=<id>]")
	fmt.Println()
	fmt.Println("Credentials and REDIS_URL are read from the environment (.env supported).")
}
