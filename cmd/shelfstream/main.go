package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shelfstream-dev/shelfstream/internal/catalog"
	"github.com/shelfstream-dev/shelfstream/pkg/schema"
	"github.com/shelfstream-dev/shelfstream/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	_ = godotenv.Load()

	addr := os.Getenv("SHELFSTREAM_ADDR")
	if addr == "" {
		addr = "http://localhost:3001"
	}

	client, err := sdk.Connect(addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "LIST":
		books, err := client.ListBooks()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(books)

	case "GET":
		if len(args) < 1 {
			log.Fatal("Usage: shelfstream GET <id>")
		}
		book, err := client.GetBook(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(book)

	case "ADD":
		if len(args) < 1 {
			log.Fatal(`Usage: shelfstream ADD '{"title":...,"author":...,"genre":...,"publishedYear":...}'`)
		}
		var in schema.BookInput
		if err := json.Unmarshal([]byte(args[0]), &in); err != nil {
			log.Fatalf("Invalid book JSON: %v", err)
		}
		book, err := client.CreateBook(in)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(book)

	case "UPDATE":
		if len(args) < 2 {
			log.Fatal("Usage: shelfstream UPDATE <id> '<book json>'")
		}
		var in schema.BookInput
		if err := json.Unmarshal([]byte(args[1]), &in); err != nil {
			log.Fatalf("Invalid book JSON: %v", err)
		}
		book, err := client.UpdateBook(args[0], in)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(book)

	case "DEL":
		if len(args) < 1 {
			log.Fatal("Usage: shelfstream DEL <id>")
		}
		id, err := client.DeleteBook(args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Deleted", id)

	case "HEALTH":
		health, err := client.Health()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(health)

	case "COPY":
		if len(args) < 1 {
			log.Fatal("Usage: shelfstream COPY <books.json>")
		}
		store, err := catalog.Open(args[0])
		if err != nil {
			log.Fatalf("Could not open local catalog: %v", err)
		}
		src := catalog.NewService(store, nil)
		if err := sdk.Migrate(src, client); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "WATCH":
		watch(client)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

// watch mirrors the remote catalog and prints each event until interrupted.
func watch(client *sdk.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := sdk.DefaultWatcherSettings()
	settings.OnEvent = printEvent
	settings.OnStateChange = func(state sdk.ConnState, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[watch] %s: %v\n", state, err)
		} else {
			fmt.Fprintf(os.Stderr, "[watch] %s\n", state)
		}
	}

	w := client.Watch(ctx, settings)
	defer w.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-w.Done():
		if _, err := w.State(); err != nil {
			log.Fatal(err)
		}
	}
}

func printEvent(ev schema.Event) {
	switch ev.Type {
	case schema.EventSnapshot:
		books, err := ev.Books()
		if err == nil {
			fmt.Printf("%s  %d books\n", ev.Type, len(books))
		}
	case schema.EventAdded, schema.EventUpdated:
		book, err := ev.Book()
		if err == nil {
			fmt.Printf("%s  %s (%q by %s)\n", ev.Type, book.ID, book.Title, book.Author)
		}
	case schema.EventDeleted:
		id, err := ev.BookID()
		if err == nil {
			fmt.Printf("%s  %s\n", ev.Type, id)
		}
	}
}

func printUsage() {
	fmt.Println("ShelfStream CLI - interface for a shelfstreamd catalog daemon")
	fmt.Println("\nUsage:")
	fmt.Println("  shelfstream LIST")
	fmt.Println("  shelfstream GET <id>")
	fmt.Println("  shelfstream ADD '<book json>'")
	fmt.Println("  shelfstream UPDATE <id> '<book json>'")
	fmt.Println("  shelfstream DEL <id>")
	fmt.Println("  shelfstream HEALTH")
	fmt.Println("  shelfstream COPY <books.json>")
	fmt.Println("  shelfstream WATCH")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  SHELFSTREAM_ADDR    Base URL of the daemon (default: http://localhost:3001)")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
