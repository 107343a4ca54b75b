// Command reconcile compares a Drive folder with the book catalog through
// the server API and reports the differences.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"readshelf/internal/config"
	"readshelf/internal/reconcile"
)

func main() {
	cfg := config.MustLoad()

	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	baseURL := fs.String("base-url", "http://localhost:8080", "Server base URL")
	folderID := fs.String("folder-id", cfg.DriveFolderID, "Drive folder to list")
	adminUsername := fs.String("admin-username", "", "Sent as X-Admin-Username")
	out := fs.String("out", "", "Write catalog entries missing in Drive to this CSV file")
	pageSize := fs.Int("page-size", reconcile.DefaultPageSize, "Listing page size")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall timeout")
	fs.Usage = printUsage
	fs.Parse(os.Args[1:])

	if *folderID == "" {
		fmt.Fprintln(os.Stderr, "Error: --folder-id is required")
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := reconcile.NewClient(*baseURL, *adminUsername, *pageSize)
	res, err := reconcile.Run(ctx, client, *folderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	reconcile.PrintSummary(os.Stdout, res)

	if *out != "" {
		if err := writeCSV(*out, res); err != nil {
			fmt.Fprintf(os.Stderr, "Write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.MissingInDrive), *out)
	}
}

func writeCSV(path string, res *reconcile.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reconcile.WriteCSV(f, res.MissingInDrive); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printUsage() {
	fmt.Println("reconcile - compare a Drive folder with the book catalog")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reconcile --folder-id=<id> [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --base-url=<url>        Server base URL (default: http://localhost:8080)")
	fmt.Println("  --folder-id=<id>        Drive folder to list (default: DRIVE_FOLDER_ID from env or .env)")
	fmt.Println("  --admin-username=<name> Sent as X-Admin-Username on every request")
	fmt.Println("  --out=<path>            Write entries missing in Drive as CSV")
	fmt.Println("  --page-size=<n>         Listing page size (default: 100)")
	fmt.Println("  --timeout=<duration>    Overall timeout (default: 5m)")
}
