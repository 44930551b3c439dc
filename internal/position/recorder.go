package position

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// JSONLRecorder appends closed trades to a file, one JSON object per line.
// Each line is marshalled before it is written so a trade that cannot be
// encoded never leaves a partial line behind.
type JSONLRecorder struct {
	mu      sync.Mutex
	file    *os.File
	log     zerolog.Logger
	written int
	failed  int
}

// NewJSONLRecorder opens path for appending, creating parent directories.
func NewJSONLRecorder(path string, log zerolog.Logger) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{file: file, log: log.With().Str("journal", path).Logger()}, nil
}

// Record appends trade and syncs the file. Failures are logged and counted;
// trades recorded after Close are dropped.
func (r *JSONLRecorder) Record(trade Trade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		r.log.Warn().Str("trade", trade.ID).Str("mint", trade.Mint).Msg("journal closed, trade dropped")
		return
	}
	line, err := json.Marshal(trade)
	if err != nil {
		r.failed++
		r.log.Error().Err(err).Str("trade", trade.ID).Str("mint", trade.Mint).Msg("encode trade")
		return
	}
	line = append(line, '\n')
	if _, err := r.file.Write(line); err != nil {
		r.failed++
		r.log.Error().Err(err).Str("trade", trade.ID).Str("mint", trade.Mint).Msg("append trade")
		return
	}
	if err := r.file.Sync(); err != nil {
		r.log.Warn().Err(err).Msg("sync journal")
	}
	r.written++
}

// Stats reports how many trades were written and how many failed.
func (r *JSONLRecorder) Stats() (written, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written, r.failed
}

// Close closes the file. Later calls are no-ops.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadTrades loads a journal written by JSONLRecorder. Lines that do not
// decode are skipped and counted. A missing file yields no trades.
func ReadTrades(path string) (trades []Trade, skipped int, err error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var trade Trade
		if err := json.Unmarshal(scanner.Bytes(), &trade); err != nil {
			skipped++
			continue
		}
		trades = append(trades, trade)
	}
	return trades, skipped, scanner.Err()
}
