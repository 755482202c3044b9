// Package ledger persists executed purchases in an append-only WAL. The
// ledger is the single source of truth for the one-buy-per-day gate: it is
// consulted fresh every cycle and survives process restarts.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"

	"github.com/flrnt/averin/internal/domain"
)

const (
	tradeKeyPrefix    = "trade_"
	segmentThreshold  = 1000
	maxSegments       = 100
	walDirPermissions = 0o755
)

// Ledger is a WAL-backed, append-only record of executed purchases.
type Ledger struct {
	mu      sync.RWMutex
	wal     *gowal.Wal
	records []domain.TradeRecord
}

// Open initializes the WAL in dir and replays every committed record into
// memory. Replay order is insertion order.
func Open(dir string) (*Ledger, error) {
	if dir == "" {
		return nil, fmt.Errorf("ledger directory is required")
	}
	if err := os.MkdirAll(dir, walDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "ensure ledger directory %s", dir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "trades_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init trade ledger WAL")
	}

	var records []domain.TradeRecord
	for msg := range wal.Iterator() {
		var record domain.TradeRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			return nil, errors.Wrapf(err, "decode trade record %s", msg.Key)
		}
		records = append(records, record)
	}

	return &Ledger{wal: wal, records: records}, nil
}

// Append durably writes the record and adds it to the in-memory view. The
// WAL write is synchronous, so a crash mid-append never corrupts previously
// committed records.
func (l *Ledger) Append(record domain.TradeRecord) error {
	if err := record.Validate(); err != nil {
		return errors.Wrap(err, "invalid trade record")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal trade record")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	nextIndex := l.wal.CurrentIndex() + 1
	key := fmt.Sprintf("%s%s", tradeKeyPrefix, record.ID)
	if err := l.wal.Write(nextIndex, key, payload); err != nil {
		return errors.Wrap(err, "append trade record to WAL")
	}

	l.records = append(l.records, record)
	return nil
}

// HasTradeToday reports whether any record, for any asset, falls on the same
// UTC calendar date as ref. No ordering of record timestamps is assumed.
func (l *Ledger) HasTradeToday(ref time.Time) bool {
	refYear, refMonth, refDay := ref.UTC().Date()

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, record := range l.records {
		y, m, d := record.Timestamp.UTC().Date()
		if y == refYear && m == refMonth && d == refDay {
			return true
		}
	}
	return false
}

// TradesOn returns how many records fall on the same UTC calendar date as ref.
func (l *Ledger) TradesOn(ref time.Time) int {
	refYear, refMonth, refDay := ref.UTC().Date()

	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, record := range l.records {
		y, m, d := record.Timestamp.UTC().Date()
		if y == refYear && m == refMonth && d == refDay {
			count++
		}
	}
	return count
}

// TotalDeployed sums the fiat spent across all records. Reporting only,
// never used for decisioning.
func (l *Ledger) TotalDeployed() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, record := range l.records {
		total = total.Add(record.FiatAmount)
	}
	return total
}

// Records returns all records in insertion order.
func (l *Ledger) Records() []domain.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]domain.TradeRecord, len(l.records))
	copy(copied, l.records)
	return copied
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Close closes the underlying WAL.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wal.Close()
}
