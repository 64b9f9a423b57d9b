package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwbudde/psoswarm/internal/store"
)

var (
	dataDir      string
	storeBackend string
)

// addStoreFlags registers the --data-dir and --store flags on cmd.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run records and traces")
	cmd.Flags().StringVar(&storeBackend, "store", "fs", "Run record backend: fs, badger or none")
}

// openStore opens the run store selected by backend. Traces and artifacts
// always live on the filesystem under dir; only the records move. The
// "none" backend returns a nil store.
func openStore(backend, dir string) (store.Store, error) {
	switch backend {
	case "fs":
		fs, err := store.NewFSStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "badger":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		bs, err := store.NewBadgerStore(store.BadgerOptions{Dir: filepath.Join(dir, "badger")})
		if err != nil {
			return nil, err
		}
		return bs, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want fs, badger or none)", backend)
	}
}
