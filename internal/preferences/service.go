// Package preferences derives a user's preference signal from recent template usage.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "user:preferences:"

// Source returns the preference signal for a user. An unknown user yields an
// empty signal, not an error.
type Source interface {
	Signal(ctx context.Context, userID string) (*models.UserPreferenceSignal, error)
}

type Config struct {
	Lookback time.Duration
	CacheTTL time.Duration
}

// Service aggregates template_usage_events over the lookback window and reads
// user_preferences, caching the result in redis.
type Service struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	now    func() time.Time
	encode func(v interface{}) ([]byte, error)
}

func NewService(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Service {
	return &Service{
		config: config,
		db:     db,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"component": "preferences"}),
		now:    time.Now,
		encode: json.Marshal,
	}
}

func (s *Service) Signal(ctx context.Context, userID string) (*models.UserPreferenceSignal, error) {
	if userID == "" {
		return &models.UserPreferenceSignal{}, nil
	}

	cacheKey := cacheKeyPrefix + userID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var signal models.UserPreferenceSignal
			if err := json.Unmarshal([]byte(val), &signal); err == nil {
				return &signal, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("preference cache read failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	signal, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil && s.config.CacheTTL > 0 {
		data, err := s.encode(signal)
		if err != nil {
			s.logger.Warn("preference cache encode failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
			return signal, nil
		}
		if err := s.redis.Set(ctx, cacheKey, data, s.config.CacheTTL).Err(); err != nil {
			s.logger.Warn("preference cache write failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	return signal, nil
}

// Invalidate drops the cached signal, e.g. after a new selection is recorded.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	if s.redis == nil || userID == "" {
		return nil
	}
	return s.redis.Del(ctx, cacheKeyPrefix+userID).Err()
}

func (s *Service) load(ctx context.Context, userID string) (*models.UserPreferenceSignal, error) {
	since := s.now().Add(-s.config.Lookback)
	signal := &models.UserPreferenceSignal{}

	outputCounts, err := s.countBy(ctx, "output_type", userID, since)
	if err != nil {
		return nil, err
	}
	if len(outputCounts) > 0 {
		signal.OutputTypeCounts = make(map[models.OutputType]int, len(outputCounts))
		for k, v := range outputCounts {
			signal.OutputTypeCounts[models.OutputType(k)] = v
		}
	}

	subjectCounts, err := s.countBy(ctx, "subject", userID, since)
	if err != nil {
		return nil, err
	}
	if len(subjectCounts) > 0 {
		signal.SubjectCounts = subjectCounts
	}

	var difficulty sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT preferred_difficulty FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&difficulty)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("query user_preferences: %w", err)
	default:
		if d := models.Difficulty(difficulty.String); d.Valid() {
			signal.PreferredDifficulty = d
		}
	}

	return signal, nil
}

// countBy groups the user's usage events since the cutoff by column, which is
// one of the fixed column names above and never user input. Groups with a
// NULL or blank key are skipped.
func (s *Service) countBy(ctx context.Context, column, userID string, since time.Time) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM template_usage_events
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY %s`, column, column)

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("count usage by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key sql.NullString
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan usage by %s: %w", column, err)
		}
		if !key.Valid || strings.TrimSpace(key.String) == "" || n <= 0 {
			continue
		}
		counts[key.String] += n
	}
	return counts, rows.Err()
}
