package sdk

import (
	"os"

	"github.com/shelfstream-dev/shelfstream/internal/catalog"
	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// New initializes a catalog service based on the environment.
// It returns the interface, so the app doesn't care if it's local or remote.
func New(dataFile string) (schema.CatalogService, error) {
	// 1. Check if a remote daemon is defined in environment variables
	remoteAddr := os.Getenv("SHELFSTREAM_ADDR")

	if remoteAddr != "" {
		// Attempt to reach the network service
		client, err := Connect(remoteAddr)
		if err == nil {
			return client, nil
		}
		// If the daemon is unreachable, fall back to local
	}

	// 2. Fallback to embedded mode: the same catalog engine the daemon uses,
	// inside the app process, without a push channel.
	store, err := catalog.Open(dataFile)
	if err != nil {
		return nil, err
	}
	return catalog.NewService(store, nil), nil
}
