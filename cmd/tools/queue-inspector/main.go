// cmd/tools/queue-inspector/main.go
//
// Offline inspection of the application document: list the pending queue,
// show one record, or dump the full history. Reads the same JSON file the
// service writes; do not run it against a live store while transitions are
// in flight.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"guild-intake/internal/models"
	"guild-intake/internal/queue"
	"guild-intake/internal/store"
	"guild-intake/pkg/registry"
)

func main() {
	pendingCmd := flag.NewFlagSet("pending", flag.ExitOnError)
	pendingPath := pendingCmd.String("path", "applications.json", "Path to the application document")

	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	showPath := showCmd.String("path", "applications.json", "Path to the application document")
	showID := showCmd.String("id", "", "Application ID to show")

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	historyPath := historyCmd.String("path", "applications.json", "Path to the application document")
	historyUser := historyCmd.String("user", "", "Filter by applicant user ID")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "pending":
		pendingCmd.Parse(os.Args[2:])
		records := load(*pendingPath)
		printPending(records)

	case "show":
		showCmd.Parse(os.Args[2:])
		if *showID == "" {
			fmt.Println("Error: -id is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		records := load(*showPath)
		printRecord(records, *showID)

	case "history":
		historyCmd.Parse(os.Args[2:])
		records := load(*historyPath)
		printHistory(records, *historyUser)

	default:
		help()
		os.Exit(1)
	}
}

func load(path string) []models.ApplicationRecord {
	records, err := store.NewFileStore(path).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	return records
}

func printPending(records []models.ApplicationRecord) {
	pending := queue.PendingInOrder(records)
	if len(pending) == 0 {
		fmt.Println("Queue is empty.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tID\tUSER\tIGN\tSUBMITTED")
	for i, rec := range pending {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i+1, rec.ID, rec.UserID, rec.Answers["ign"],
			rec.SubmittedAt.Format(time.RFC3339))
	}
	w.Flush()
	fmt.Printf("\n%d pending application(s)\n", len(pending))
}

func printRecord(records []models.ApplicationRecord, id string) {
	for _, rec := range records {
		if rec.ID != id {
			continue
		}
		fmt.Printf("ID:        %s\n", rec.ID)
		fmt.Printf("User:      %s (%s)\n", rec.Username, rec.UserID)
		fmt.Printf("Status:    %s\n", rec.Status)
		fmt.Printf("Submitted: %s\n", rec.SubmittedAt.Format(time.RFC3339))
		if rec.ProcessedBy != "" {
			fmt.Printf("Processed: by %s at %s\n", rec.ProcessedBy, rec.ProcessedAt.Format(time.RFC3339))
		}
		if rec.RejectionReason != "" {
			fmt.Printf("Reason:    %s\n", rec.RejectionReason)
		}
		fmt.Println("Answers:")
		for _, key := range registry.AllKeys() {
			if v, ok := rec.Answers[key]; ok {
				fmt.Printf("  %-14s %s\n", key+":", v)
			}
		}
		return
	}
	fmt.Fprintf(os.Stderr, "No application with ID %s\n", id)
	os.Exit(1)
}

func printHistory(records []models.ApplicationRecord, userID string) {
	out := make([]models.ApplicationRecord, 0, len(records))
	for _, rec := range records {
		if userID == "" || rec.UserID == userID {
			out = append(out, rec)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println("Usage: queue-inspector <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  pending   List the pending queue in review order")
	fmt.Println("  show      Show one application record (-id required)")
	fmt.Println("  history   Dump records as JSON, optionally filtered (-user)")
}
