package ledger

import (
	"sync"
	"time"
)

// CachedStore wraps a Store with a short-lived per-sheet snapshot cache
// to cut read volume against the workbook. Correctness never depends on
// cache freshness: every write invalidates, and the engine calls
// Invalidate before read-then-write decisions so those see live data.
type CachedStore struct {
	inner Store
	ttl   time.Duration

	mu      sync.Mutex
	rows    map[string]cacheEntry[[][]string]
	records map[string]cacheEntry[[]map[string]string]
}

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// NewCachedStore wraps store; a non-positive ttl disables caching.
func NewCachedStore(store Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner:   store,
		ttl:     ttl,
		rows:    make(map[string]cacheEntry[[][]string]),
		records: make(map[string]cacheEntry[[]map[string]string]),
	}
}

// Invalidate drops all cached snapshots.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = make(map[string]cacheEntry[[][]string])
	c.records = make(map[string]cacheEntry[[]map[string]string])
}

// ReadAllRows implements Store.
func (c *CachedStore) ReadAllRows(sheet string) ([][]string, error) {
	c.mu.Lock()
	if entry, ok := c.rows[sheet]; ok && c.fresh(entry.fetchedAt) {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	rows, err := c.inner.ReadAllRows(sheet)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rows[sheet] = cacheEntry[[][]string]{value: rows, fetchedAt: time.Now()}
	c.mu.Unlock()
	return rows, nil
}

// ReadRecords implements Store.
func (c *CachedStore) ReadRecords(sheet string) ([]map[string]string, error) {
	c.mu.Lock()
	if entry, ok := c.records[sheet]; ok && c.fresh(entry.fetchedAt) {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	records, err := c.inner.ReadRecords(sheet)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records[sheet] = cacheEntry[[]map[string]string]{value: records, fetchedAt: time.Now()}
	c.mu.Unlock()
	return records, nil
}

// ReadColumn implements Store. Column reads are cheap and rare, they
// pass through uncached.
func (c *CachedStore) ReadColumn(sheet string, col int) ([]string, error) {
	return c.inner.ReadColumn(sheet, col)
}

// WriteCell implements Store.
func (c *CachedStore) WriteCell(sheet string, row, col int, value string) error {
	if err := c.inner.WriteCell(sheet, row, col, value); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// WriteRange implements Store.
func (c *CachedStore) WriteRange(sheet string, row, startCol int, values []string) error {
	if err := c.inner.WriteRange(sheet, row, startCol, values); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// AppendRow implements Store.
func (c *CachedStore) AppendRow(sheet string, values []string) error {
	if err := c.inner.AppendRow(sheet, values); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// InsertRow implements Store.
func (c *CachedStore) InsertRow(sheet string, values []string, atRow int) error {
	if err := c.inner.InsertRow(sheet, values, atRow); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

func (c *CachedStore) fresh(fetchedAt time.Time) bool {
	return c.ttl > 0 && time.Since(fetchedAt) < c.ttl
}
