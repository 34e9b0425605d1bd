package market

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epeers/holdings/internal/models"
)

// Store persists the reference holdings of each segment with the time they
// were last refreshed. LastRefresh returns the zero time for a segment that
// was never saved.
type Store interface {
	LastRefresh(ctx context.Context, segment string) (time.Time, error)
	Load(ctx context.Context, segment string) ([]models.Holding, error)
	Save(ctx context.Context, segment string, holdings []models.Holding, refreshedAt time.Time) error
}

// ErrCacheLocked is returned by Save when another writer holds the cache lock
var ErrCacheLocked = errors.New("market cache is locked by another writer")

const (
	metadataFile = "market_metadata.json"
	lockFile     = "market.lock"
	// staleLockAge is how old a lock file must be before it is considered
	// abandoned by a crashed writer
	staleLockAge = 10 * time.Minute
)

var holdingColumns = []string{"Name", "Ticker", "Country", "Sector", "Industry", "Currency", "Exchange", "Type"}

// FileStore keeps one CSV file per segment plus a JSON metadata file with
// the refresh timestamps. Writers take an exclusive lock file so that two
// processes never refresh the same directory at once.
type FileStore struct {
	dir string
}

type segmentMetadata struct {
	Timestamp int64 `json:"timestamp"`
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) holdingsPath(segment string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return filepath.Join(fs.dir, r.Replace(segment)+"_holdings.csv")
}

func (fs *FileStore) readMetadata() (map[string]segmentMetadata, error) {
	meta := make(map[string]segmentMetadata)
	data, err := os.ReadFile(filepath.Join(fs.dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return meta, nil
}

func (fs *FileStore) LastRefresh(ctx context.Context, segment string) (time.Time, error) {
	meta, err := fs.readMetadata()
	if err != nil {
		return time.Time{}, err
	}
	m, ok := meta[segment]
	if !ok || m.Timestamp == 0 {
		return time.Time{}, nil
	}
	return time.Unix(m.Timestamp, 0).UTC(), nil
}

func (fs *FileStore) Load(ctx context.Context, segment string) ([]models.Holding, error) {
	f, err := os.Open(fs.holdingsPath(segment))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", segment, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[col] = i
	}
	for _, col := range holdingColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	holdings := []models.Holding{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		col := func(name string) string { return record[colIdx[name]] }
		holdings = append(holdings, models.NewHolding(col("Name"),
			models.WithTicker(col("Ticker")),
			models.WithCountry(col("Country")),
			models.WithSector(col("Sector")),
			models.WithIndustry(col("Industry")),
			models.WithCurrency(col("Currency")),
			models.WithExchange(col("Exchange")),
			models.WithType(models.ParseHoldingType(col("Type"))),
		))
	}
	return holdings, nil
}

func (fs *FileStore) Save(ctx context.Context, segment string, holdings []models.Holding, refreshedAt time.Time) error {
	unlock, err := fs.lock()
	if err != nil {
		return err
	}
	defer unlock()

	err = writeAtomic(fs.holdingsPath(segment), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(holdingColumns); err != nil {
			return err
		}
		for _, h := range holdings {
			if err := cw.Write([]string{h.Name, h.Ticker, h.Country, h.Sector, h.Industry, h.Currency, h.Exchange, string(h.Type)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write %s cache: %w", segment, err)
	}

	meta, err := fs.readMetadata()
	if err != nil {
		return err
	}
	meta[segment] = segmentMetadata{Timestamp: refreshedAt.Unix()}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return writeAtomic(filepath.Join(fs.dir, metadataFile), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// lock takes the directory's writer lock. A lock older than staleLockAge is
// broken.
func (fs *FileStore) lock() (func(), error) {
	path := filepath.Join(fs.dir, lockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		info, statErr := os.Stat(path)
		if statErr != nil || time.Since(info.ModTime()) < staleLockAge {
			return nil, ErrCacheLocked
		}
		os.Remove(path)
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	}
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrCacheLocked
		}
		return nil, fmt.Errorf("failed to create lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(path) }, nil
}

// writeAtomic writes through a temp file renamed over path
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
