package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/shelfstream-dev/shelfstream/internal/api"
	"github.com/shelfstream-dev/shelfstream/internal/catalog"
	"github.com/shelfstream-dev/shelfstream/internal/hub"
)

func main() {
	fmt.Println("Starting ShelfStream Daemon...")

	// A .env file is optional; real deployments set variables directly.
	_ = godotenv.Load()

	dataFile := os.Getenv("SHELFSTREAM_DATA_FILE")
	if dataFile == "" {
		dataFile = "./books.json"
	}

	httpPort := os.Getenv("SHELFSTREAM_HTTP_PORT")
	if httpPort == "" {
		httpPort = "3001"
	}

	// 1. Load the catalog (seeds itself when the backing file holds no data)
	store, err := catalog.Open(dataFile)
	if err != nil {
		log.Fatalf("Failed to open catalog at %s: %v", dataFile, err)
	}
	fmt.Printf("Catalog loaded. %d books on the shelf.\n", len(store.List()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Start the broadcaster
	broadcaster := hub.NewHub(store.List)
	go broadcaster.Run(ctx)

	// 3. Wire the mutation API over the store and broadcaster
	service := catalog.NewService(store, broadcaster)
	h := &api.Handler{Catalog: service, Hub: broadcaster}

	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	h.Register(r.Group("/api"))
	r.GET("/ws", broadcaster.ServeWS)

	srv := &http.Server{Addr: ":" + httpPort, Handler: r}

	// 4. Serve
	go func() {
		fmt.Printf("ShelfStream listening on :%s (push channel at /ws)\n", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 5. Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutdown signal received. Closing subscriber connections...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: shutdown did not complete cleanly: %v", err)
	}
	fmt.Println("Exiting.")
}
