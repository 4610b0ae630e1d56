package dates

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duodate-app/duodate-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository reads community-submitted date ideas. Lookups are best
// effort; the orchestrator tolerates an empty result and a nil
// repository alike.
type Repository interface {
	FindCommunityIdeas(ctx context.Context, answers types.QuizAnswers, limit int) ([]types.DateSuggestion, error)
}

// PgxPool is the slice of pgxpool.Pool this repository needs; kept
// narrow so tests can substitute a mock pool.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresRepository(pgpool PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// FindCommunityIdeas returns up to limit stored ideas matching the
// requested mood's categories and budget when given, newest first.
func (r *PostgresRepository) FindCommunityIdeas(ctx context.Context, answers types.QuizAnswers, limit int) ([]types.DateSuggestion, error) {
	query := `
        SELECT id, title, description, category, duration, cost, location_type, area, image_url, created_at
        FROM date_ideas
        WHERE ($1 = '' OR category = ANY(string_to_array($1, ',')))
          AND ($2 = '' OR cost = $2)
        ORDER BY created_at DESC
        LIMIT $3
    `

	categories := categoriesForMood(answers.Mood())
	rows, err := r.pgpool.Query(ctx, query, categories, answers[types.QuizKeyBudget], limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query date ideas: %w", err)
	}
	defer rows.Close()

	var ideas []types.DateSuggestion
	for rows.Next() {
		var (
			id        uuid.UUID
			area      *string
			imageURL  *string
			createdAt time.Time
			s         types.DateSuggestion
		)
		if err := rows.Scan(&id, &s.Title, &s.Description, &s.Category, &s.Duration, &s.Cost, &s.LocationType, &area, &imageURL, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan date idea: %w", err)
		}
		s.ID = id.String()
		if area != nil {
			s.Area = *area
		}
		if imageURL != nil {
			s.ImageURL = *imageURL
		}
		s.CreatedAt = createdAt
		s.GeneratedBy = types.GeneratedByCommunity
		ideas = append(ideas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading date ideas: %w", err)
	}

	return ideas, nil
}

// categoriesForMood renders the allowed-category set of a mood as a
// comma-separated list for the SQL filter, empty for unmapped moods.
func categoriesForMood(rawMood string) string {
	categories, ok := allowedCategories[NormalizeMood(rawMood)]
	if !ok {
		return ""
	}
	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
