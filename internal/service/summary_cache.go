package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profileiq-api/internal/dto"
)

// SummaryCache stores student dashboard summaries in Redis. A nil client disables caching.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSummaryCache builds the student summary cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "summary_cache").Logger(),
	}
}

func summaryCacheKey(studentID uint) string {
	return fmt.Sprintf("profileiq:summary:student:%d", studentID)
}

// Get returns the cached summary and whether it was found.
func (c *SummaryCache) Get(ctx context.Context, studentID uint) (dto.StudentSummaryResponse, bool) {
	if c == nil || c.client == nil {
		return dto.StudentSummaryResponse{}, false
	}

	cached, err := c.client.Get(ctx, summaryCacheKey(studentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
		return dto.StudentSummaryResponse{}, false
	}

	var summary dto.StudentSummaryResponse
	if err := json.Unmarshal([]byte(cached), &summary); err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable summary cache entry")
		return dto.StudentSummaryResponse{}, false
	}

	c.logger.Debug().Uint("student_id", studentID).Msg("summary cache hit")
	return summary, true
}

// Set stores the summary for the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, studentID uint, summary dto.StudentSummaryResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryCacheKey(studentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store summary cache")
	}
}

// Invalidate drops the cached summary after the student's data changed.
func (c *SummaryCache) Invalidate(ctx context.Context, studentID uint) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, summaryCacheKey(studentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate summary cache")
	}
}
