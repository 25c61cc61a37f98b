// Copyright 2025 Tokenlens
//
// Redis-backed analysis store: cached inspections, leaderboards, and
// aggregate score statistics. This is a collaborator of the core; the
// inspection pipeline never depends on it.

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/ethereum"
	"github.com/tokenlens/tokenlens/pkg/inspector"
)

// LeaderboardEntry is one row of a score leaderboard.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	ChainID         uint64  `json:"chain_id"`
	ContractAddress string  `json:"contract_address"`
	TokenID         string  `json:"token_id"`
	Score           float64 `json:"score"`
	StoredAt        string  `json:"stored_at"`
}

// Stats is the aggregate view over all stored analyses.
type Stats struct {
	TotalAnalyses int64            `json:"total_analyses"`
	AverageScore  float64          `json:"average_score"`
	Histogram     map[string]int64 `json:"histogram"`
	LastUpdated   string           `json:"last_updated"`
}

// Store is the redis-backed persistence layer.
type Store struct {
	rdb *redis.Client
	log *logrus.Logger
}

// NewStore connects to redis using a URL of the form
// redis://[:password@]host:port/db.
func NewStore(ctx context.Context, redisURL string, log *logrus.Logger) (*Store, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL not configured")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("connected to redis")

	return &Store{rdb: rdb, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func nftKey(chainID uint64, contract ethereum.Address, tokenID string) string {
	return fmt.Sprintf("nft:%d:%s:%s", chainID, contract.Hex(), tokenID)
}

func leaderboardKey(chainID *uint64) string {
	if chainID == nil {
		return "leaderboard:global"
	}
	return fmt.Sprintf("leaderboard:chain:%d", *chainID)
}

const statsKey = "stats:global"

// SaveAnalysis stores a completed inspection and updates the leaderboards
// and statistics.
func (s *Store) SaveAnalysis(ctx context.Context, info *inspector.TokenInfo) error {
	if s.rdb == nil {
		return ErrNotInitialized
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	key := nftKey(info.ChainID, info.ContractAddress, info.TokenID.String())
	storedAt := time.Now().UTC().Format(time.RFC3339)

	fields := map[string]interface{}{
		"analysis_id":      uuid.NewString(),
		"token_info":       string(payload),
		"stored_at":        storedAt,
		"chain_id":         strconv.FormatUint(info.ChainID, 10),
		"contract_address": info.ContractAddress.Hex(),
		"token_id":         info.TokenID.String(),
	}

	var score int
	if info.TrustAnalysis != nil {
		score = info.TrustAnalysis.OverallScore
		fields["score"] = strconv.Itoa(score)
		fields["permanence_score"] = strconv.Itoa(info.TrustAnalysis.Permanence.OverallScore)
		fields["trustlessness_score"] = strconv.Itoa(info.TrustAnalysis.Trustlessness.OverallScore)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)

	if info.TrustAnalysis != nil {
		member := redis.Z{Score: float64(score), Member: key}
		pipe.ZAdd(ctx, leaderboardKey(nil), member)
		chainID := info.ChainID
		pipe.ZAdd(ctx, leaderboardKey(&chainID), member)

		pipe.HIncrBy(ctx, statsKey, "total_analyses", 1)
		pipe.HIncrBy(ctx, statsKey, "score_total", int64(score))
		pipe.HIncrBy(ctx, statsKey, "histogram:"+strconv.Itoa(score), 1)
		pipe.HSet(ctx, statsKey, "last_updated", storedAt)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"chain_id": info.ChainID,
		"contract": info.ContractAddress.Hex(),
		"token_id": info.TokenID.String(),
		"score":    score,
	}).Debug("stored analysis")

	return nil
}

// GetAnalysis loads a cached inspection, or ErrNotFound.
func (s *Store) GetAnalysis(ctx context.Context, chainID uint64, contract ethereum.Address, tokenID string) (*inspector.TokenInfo, error) {
	if s.rdb == nil {
		return nil, ErrNotInitialized
	}

	payload, err := s.rdb.HGet(ctx, nftKey(chainID, contract, tokenID), "token_info").Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var info inspector.TokenInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}
	return &info, nil
}

// Leaderboard returns one page of the global or per-chain leaderboard,
// highest scores first.
func (s *Store) Leaderboard(ctx context.Context, chainID *uint64, page, size int) ([]LeaderboardEntry, error) {
	if s.rdb == nil {
		return nil, ErrNotInitialized
	}
	if page < 1 {
		page = 1
	}

	start := int64((page - 1) * size)
	stop := start + int64(size) - 1

	members, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey(chainID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for idx, member := range members {
		key, _ := member.Member.(string)
		record, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil || len(record) == 0 {
			continue
		}
		chain, _ := strconv.ParseUint(record["chain_id"], 10, 64)
		entries = append(entries, LeaderboardEntry{
			Rank:            int(start) + idx + 1,
			ChainID:         chain,
			ContractAddress: record["contract_address"],
			TokenID:         record["token_id"],
			Score:           member.Score,
			StoredAt:        record["stored_at"],
		})
	}
	return entries, nil
}

// GetStats returns the aggregate score statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	if s.rdb == nil {
		return nil, ErrNotInitialized
	}

	record, err := s.rdb.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	stats := &Stats{Histogram: map[string]int64{}, LastUpdated: record["last_updated"]}
	stats.TotalAnalyses, _ = strconv.ParseInt(record["total_analyses"], 10, 64)
	scoreTotal, _ := strconv.ParseInt(record["score_total"], 10, 64)
	if stats.TotalAnalyses > 0 {
		stats.AverageScore = float64(scoreTotal) / float64(stats.TotalAnalyses)
	}
	for field, value := range record {
		if bucket, ok := cutPrefix(field, "histogram:"); ok {
			count, _ := strconv.ParseInt(value, 10, 64)
			stats.Histogram[bucket] = count
		}
	}
	return stats, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}
