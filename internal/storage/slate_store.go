package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/simulator"
)

const (
	snapshotKeyPrefix = "parlayforge:snapshot:"
	buildKeyPrefix    = "parlayforge:build:"
	reportKeyPrefix   = "parlayforge:report:"
	snapshotIndexKey  = "parlayforge:snapshots"
)

// SlateStore persists frozen slate snapshots and caches engine output in
// Redis. Snapshots are the replay unit: the exact bytes saved here are the
// bytes fed back through the builder.
type SlateStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSlateStore creates a Redis-backed slate store from a connection URL.
func NewSlateStore(redisURL string, ttl time.Duration, logger *logrus.Logger) (*SlateStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SlateStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// SaveSnapshot freezes a slate under its date. The canonical encoding is
// stored so a later load replays byte-identically.
func (s *SlateStore) SaveSnapshot(ctx context.Context, snap *engine.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := snapshotKeyPrefix + snap.SlateDate
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := s.client.SAdd(ctx, snapshotIndexKey, snap.SlateDate).Err(); err != nil {
		return fmt.Errorf("failed to index snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"slate_date": snap.SlateDate,
			"candidates": len(snap.Candidates),
			"ttl":        s.ttl,
		}).Info("Snapshot saved")
	}
	return nil
}

// LoadSnapshot retrieves a frozen slate by date. A missing date returns a
// nil snapshot with no error.
func (s *SlateStore) LoadSnapshot(ctx context.Context, slateDate string) (*engine.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKeyPrefix+slateDate).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return engine.ParseSnapshot(data)
}

// ListSnapshots returns the dates of every frozen slate still within TTL.
func (s *SlateStore) ListSnapshots(ctx context.Context) ([]string, error) {
	dates, err := s.client.SMembers(ctx, snapshotIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	// The index can outlive expired snapshots; filter to live keys
	live := make([]string, 0, len(dates))
	for _, date := range dates {
		exists, err := s.client.Exists(ctx, snapshotKeyPrefix+date).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check snapshot: %w", err)
		}
		if exists > 0 {
			live = append(live, date)
		} else {
			s.client.SRem(ctx, snapshotIndexKey, date)
		}
	}
	return live, nil
}

// CacheBuild stores builder output keyed by slate date and preset.
func (s *SlateStore) CacheBuild(ctx context.Context, slateDate, preset string, output *engine.BuilderOutput) error {
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal build output: %w", err)
	}
	key := buildKeyPrefix + slateDate + ":" + preset
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache build output: %w", err)
	}
	return nil
}

// GetCachedBuild retrieves cached builder output, or nil on a miss.
func (s *SlateStore) GetCachedBuild(ctx context.Context, slateDate, preset string) (*engine.BuilderOutput, error) {
	data, err := s.client.Get(ctx, buildKeyPrefix+slateDate+":"+preset).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached build output: %w", err)
	}

	var output engine.BuilderOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached build output: %w", err)
	}
	return &output, nil
}

// CacheReport stores a simulation report under its run ID.
func (s *SlateStore) CacheReport(ctx context.Context, runID string, report *simulator.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation report: %w", err)
	}
	if err := s.client.Set(ctx, reportKeyPrefix+runID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache simulation report: %w", err)
	}
	return nil
}

// GetCachedReport retrieves a simulation report by run ID, or nil on a miss.
func (s *SlateStore) GetCachedReport(ctx context.Context, runID string) (*simulator.Report, error) {
	data, err := s.client.Get(ctx, reportKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}

	var report simulator.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return &report, nil
}

// HealthCheck verifies Redis connectivity.
func (s *SlateStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (s *SlateStore) Close() error {
	return s.client.Close()
}
