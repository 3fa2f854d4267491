// Package backup exports snapshots of the store and keeps a rotating set
// of compressed backups inside the database itself.
package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("backup: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("backup: zstd decoder initialization failed: " + err.Error())
	}
}

// SnapshotSource produces the data to back up.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Manager handles backup operations
type Manager struct {
	store      storage.Store
	source     SnapshotSource
	maxBackups int
}

// NewManager creates a backup manager keeping at most maxBackups backups.
// Non-positive values use the default of 14.
func NewManager(store storage.Store, source SnapshotSource, maxBackups int) *Manager {
	if maxBackups <= 0 {
		maxBackups = constants.MaxBackups
	}
	return &Manager{store: store, source: source, maxBackups: maxBackups}
}

// Create stores a new backup and rotates out the oldest ones.
func (m *Manager) Create(ctx context.Context) (models.Backup, error) {
	snap, err := m.source.Snapshot(ctx)
	if err != nil {
		return models.Backup{}, fmt.Errorf("failed to take snapshot: %w", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return models.Backup{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	b, err := m.store.SaveBackup(ctx, encoder.EncodeAll(raw, nil))
	if err != nil {
		return models.Backup{}, err
	}

	pruned, err := m.store.PruneBackups(ctx, m.maxBackups)
	if err != nil {
		// the backup itself succeeded
		logger.Warn("Failed to rotate old backups", "error", err)
	} else if pruned > 0 {
		logger.Debug("Rotated old backups", "removed", pruned)
	}
	return b, nil
}

// List returns the stored backups, newest first.
func (m *Manager) List(ctx context.Context) ([]models.Backup, error) {
	return m.store.ListBackups(ctx)
}

// Read decompresses and decodes a stored backup.
func (m *Manager) Read(ctx context.Context, id string) (models.Snapshot, error) {
	payload, err := m.store.GetBackupPayload(ctx, id)
	if err != nil {
		return models.Snapshot{}, err
	}
	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("backup %s: zstd decompress: %w", id, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("backup %s: invalid snapshot: %w", id, err)
	}
	return snap, nil
}
