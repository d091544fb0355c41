package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage, and
	// how long an enqueue waits on a full channel before dropping.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records decisions asynchronously to avoid blocking requests.
type Recorder struct {
	storage    Storage
	config     *Config
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates an audit recorder with the provided storage backend
// and starts its background writer.
func NewRecorder(storage Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues one decision for async persistence. The payload is
// marshaled immediately so later mutations by the caller cannot leak into
// the record. Record returns without waiting for the storage write.
func (r *Recorder) Record(ctx context.Context, kind Kind, enterpriseID, toolID, outcome string, payload any) error {
	if !r.config.Enabled {
		return nil
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return NewStorageError("recorder", "marshal_payload", err)
		}
		raw = data
	}

	record := &Record{
		ID:           uuid.New().String(),
		Kind:         kind,
		EnterpriseID: enterpriseID,
		ToolID:       toolID,
		Outcome:      outcome,
		Payload:      raw,
		RecordedAt:   time.Now(),
	}

	select {
	case r.recordChan <- record:
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("audit channel full, dropping record",
			"record_id", record.ID,
			"kind", string(kind),
			"channel_capacity", r.config.AsyncBuffer,
		)
		return &DroppedError{RecordID: record.ID, Reason: "channel full"}
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"kind", string(kind),
		)
		return &DroppedError{RecordID: record.ID, Reason: "shutting down"}
	}
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("audit recorder shut down complete")
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("audit channel drained")
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"kind", string(record.Kind),
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("decision audited",
		"record_id", record.ID,
		"kind", string(record.Kind),
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
