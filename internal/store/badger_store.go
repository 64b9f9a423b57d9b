package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const runPrefix = "run/"

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir        string
	InMemory   bool
	SyncWrites bool
}

// BadgerStore implements the Store interface on an embedded badger
// database. Records live under keys "run/<runID>" as JSON.
//
// Traces and rendered artifacts stay on the filesystem; DeleteRun only
// removes the record.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a badger-backed store.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, fmt.Errorf("badger directory cannot be empty")
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.WithSyncWrites(opts.SyncWrites).WithLogger(slogLogger{})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func runKey(runID string) []byte {
	return []byte(runPrefix + runID)
}

// SaveRun stores a run record, replacing any previous one.
func (bs *BadgerStore) SaveRun(record *RunRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.RunID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	if err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(record.RunID), data)
	}); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	slog.Debug("Run saved", "run_id", record.RunID, "backend", "badger")
	return nil
}

// LoadRun retrieves the record for runID.
func (bs *BadgerStore) LoadRun(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	var record RunRecord
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(runID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	return &record, nil
}

// ListRuns returns summaries of all runs, oldest first.
func (bs *BadgerStore) ListRuns() ([]RunInfo, error) {
	infos := []RunInfo{}

	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			runID := strings.TrimPrefix(string(item.Key()), runPrefix)

			var record RunRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				slog.Warn("Failed to decode run for listing", "run_id", runID, "error", err)
				continue
			}
			infos = append(infos, record.ToInfo())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sortInfos(infos)
	return infos, nil
}

// DeleteRun removes the record for runID.
func (bs *BadgerStore) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	err := bs.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(runKey(runID)); err != nil {
			return err
		}
		return txn.Delete(runKey(runID))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	slog.Debug("Run deleted", "run_id", runID, "backend", "badger")
	return nil
}

// Close closes the underlying database.
func (bs *BadgerStore) Close() error {
	if err := bs.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	return nil
}

// slogLogger routes badger's internal logging through slog.
type slogLogger struct{}

func (slogLogger) Errorf(format string, args ...interface{}) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Warningf(format string, args ...interface{}) {
	slog.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Infof(format string, args ...interface{}) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Debugf(format string, args ...interface{}) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
