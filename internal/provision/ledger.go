package provision

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LedgerRecord is one provisioned artifact in the JSONL run ledger.
type LedgerRecord struct {
	RunID        string       `json:"run_id"`
	RunStamp     string       `json:"run_stamp"`
	ArtifactPath string       `json:"artifact_path"`
	ArtifactKind ArtifactKind `json:"artifact_kind"`
	BackupPath   string       `json:"backup_path,omitempty"`
	Created      bool         `json:"created"`
	RecordedAt   time.Time    `json:"recorded_at"`
}

// RecordsFromReport converts a run report into ledger records.
// Backup paths are stored relative to the project root.
func RecordsFromReport(r *Report, at time.Time) []LedgerRecord {
	records := make([]LedgerRecord, 0, len(r.Results))
	for _, res := range r.Results {
		rec := LedgerRecord{
			RunID:        r.RunID,
			RunStamp:     r.RunStamp,
			ArtifactPath: res.RelPath,
			ArtifactKind: res.Kind,
			Created:      res.Created,
			RecordedAt:   at.UTC(),
		}
		if res.BackupPath != "" {
			rel, err := filepath.Rel(r.Root, res.BackupPath)
			if err != nil {
				rel = res.BackupPath
			}
			rec.BackupPath = filepath.ToSlash(rel)
		}
		records = append(records, rec)
	}
	return records
}

// Ledger is an append-only JSONL record of provisioning runs.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// NewLedger creates a ledger backed by path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes records as JSON lines and syncs the file.
func (l *Ledger) Append(records ...LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // sync already called, close best-effort
	}()

	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal ledger record: %w", err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write ledger line: %w", err)
		}
	}

	return f.Sync()
}

// Records returns every record in file order. Malformed lines are skipped.
func (l *Ledger) Records() (records []LedgerRecord, err error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec LedgerRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, scanner.Err()
}

// LastRun returns the records of the most recent run, or nil if the ledger is empty.
func (l *Ledger) LastRun() ([]LedgerRecord, error) {
	records, err := l.Records()
	if err != nil || len(records) == 0 {
		return nil, err
	}
	last := records[len(records)-1].RunID
	var out []LedgerRecord
	for _, rec := range records {
		if rec.RunID == last {
			out = append(out, rec)
		}
	}
	return out, nil
}
