// Package backup writes, lists, rotates and reads full-state snapshot files.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/utils"
)

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path string
	Date time.Time
	// Seq orders backups taken on the same date.
	Seq  int
	Size int64
}

// Manager handles backup files under <configDir>/backups.
type Manager struct {
	backupDir string
	max       int
	now       func() time.Time
}

// NewManager creates a manager keeping at most max backups; max <= 0 selects
// the default.
func NewManager(configDir string, max int) *Manager {
	if max <= 0 {
		max = constants.MaxBackups
	}
	return &Manager{
		backupDir: filepath.Join(configDir, constants.BackupDirName),
		max:       max,
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes snap as today's backup and rotates old ones.
func (m *Manager) CreateBackup(snap models.Snapshot) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	date := utils.FormatDate(m.now())
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+date+constants.BackupFileSuffix)
	for seq := 1; fileExists(path); seq++ {
		if seq > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, date, seq, constants.BackupFileSuffix))
	}

	if err := WriteFile(path, snap); err != nil {
		return "", err
	}
	if err := m.rotateBackups(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path: filepath.Join(m.backupDir, entry.Name()),
			Date: date,
			Seq:  seq,
			Size: info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Date.Equal(backups[j].Date) {
			return backups[i].Date.After(backups[j].Date)
		}
		return backups[i].Seq > backups[j].Seq
	})
	return backups, nil
}

// parseName extracts the date and sequence from
// zentask-backup-YYYY-MM-DD[-N].json.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stem) < len(constants.DateFormat) {
		return time.Time{}, 0, false
	}
	date, err := utils.ParseDate(stem[:len(constants.DateFormat)])
	if err != nil {
		return time.Time{}, 0, false
	}
	rest := stem[len(constants.DateFormat):]
	if rest == "" {
		return date, 0, true
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
	if err != nil || !strings.HasPrefix(rest, "-") || seq < 1 {
		return time.Time{}, 0, false
	}
	return date, seq, true
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.max; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Resolve finds a backup given an absolute path, a path relative to the
// working directory or a file name inside the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if !fileExists(name) {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if fileExists(name) {
		return filepath.Abs(name)
	}
	if p := filepath.Join(m.backupDir, name); fileExists(p) {
		return p, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.backupDir)
}

// ReadFile decodes a snapshot file.
func ReadFile(path string) (models.Snapshot, error) {
	var snap models.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("%s is not a valid backup: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// WriteFile writes snap as indented JSON through a temporary file and rename.
func WriteFile(path string, snap models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
