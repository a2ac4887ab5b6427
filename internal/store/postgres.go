package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, plan_tier, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PlanTier, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// --- Brands ---

func (s *PostgresStore) CreateBrand(ctx context.Context, brand *models.Brand) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO brands (id, user_id, name, aliases, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		brand.ID, brand.UserID, brand.Name, brand.Aliases, brand.CreatedAt, brand.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBrand(ctx context.Context, id, userID uuid.UUID) (*models.Brand, error) {
	var b models.Brand
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, aliases, created_at, updated_at
		 FROM brands WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&b.ID, &b.UserID, &b.Name, &b.Aliases, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) ListBrands(ctx context.Context, userID uuid.UUID) ([]*models.Brand, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, aliases, created_at, updated_at
		 FROM brands WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Aliases, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, &b)
	}
	return brands, rows.Err()
}

func (s *PostgresStore) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE brands SET name = $1, aliases = $2, updated_at = NOW()
		 WHERE id = $3 AND user_id = $4`,
		brand.Name, brand.Aliases, brand.ID, brand.UserID)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBrand removes the brand; competitors, queries, and results cascade
// via foreign keys.
func (s *PostgresStore) DeleteBrand(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM brands WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountBrands(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM brands WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count brands: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListBrandsForRun(ctx context.Context) ([]*BrandForRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT b.id, b.user_id, b.name, b.aliases, b.created_at, b.updated_at, u.plan_tier
		 FROM brands b
		 JOIN users u ON u.id = b.user_id
		 WHERE EXISTS (
		   SELECT 1 FROM monitored_queries q WHERE q.brand_id = b.id AND q.is_active
		 )
		 ORDER BY b.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list brands for run: %w", err)
	}
	defer rows.Close()

	var brands []*BrandForRun
	for rows.Next() {
		var br BrandForRun
		if err := rows.Scan(&br.Brand.ID, &br.Brand.UserID, &br.Brand.Name, &br.Brand.Aliases,
			&br.Brand.CreatedAt, &br.Brand.UpdatedAt, &br.PlanTier); err != nil {
			return nil, fmt.Errorf("scan brand for run: %w", err)
		}
		brands = append(brands, &br)
	}
	return brands, rows.Err()
}

// --- Competitors ---

func (s *PostgresStore) CreateCompetitor(ctx context.Context, comp *models.Competitor) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO competitors (id, brand_id, name, aliases, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		comp.ID, comp.BrandID, comp.Name, comp.Aliases, comp.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create competitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCompetitors(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, brand_id, name, aliases, created_at
		 FROM competitors WHERE brand_id = $1 ORDER BY created_at`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	var comps []*models.Competitor
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.ID, &c.BrandID, &c.Name, &c.Aliases, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		comps = append(comps, &c)
	}
	return comps, rows.Err()
}

func (s *PostgresStore) DeleteCompetitor(ctx context.Context, id, brandID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM competitors WHERE id = $1 AND brand_id = $2`, id, brandID)
	if err != nil {
		return fmt.Errorf("delete competitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountCompetitors(ctx context.Context, brandID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competitors WHERE brand_id = $1`, brandID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count competitors: %w", err)
	}
	return count, nil
}

// --- Monitored Queries ---

func (s *PostgresStore) CreateQuery(ctx context.Context, query *models.MonitoredQuery) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitored_queries (id, brand_id, query_text, category, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		query.ID, query.BrandID, query.QueryText, query.Category, query.IsActive,
		query.CreatedAt, query.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create query: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetQuery(ctx context.Context, id uuid.UUID) (*models.MonitoredQuery, error) {
	var q models.MonitoredQuery
	err := s.pool.QueryRow(ctx,
		`SELECT id, brand_id, query_text, category, is_active, created_at, updated_at
		 FROM monitored_queries WHERE id = $1`, id,
	).Scan(&q.ID, &q.BrandID, &q.QueryText, &q.Category, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get query: %w", err)
	}
	return &q, nil
}

func (s *PostgresStore) GetQueryForUser(ctx context.Context, id, userID uuid.UUID) (*models.MonitoredQuery, error) {
	var q models.MonitoredQuery
	err := s.pool.QueryRow(ctx,
		`SELECT q.id, q.brand_id, q.query_text, q.category, q.is_active, q.created_at, q.updated_at
		 FROM monitored_queries q
		 JOIN brands b ON b.id = q.brand_id
		 WHERE q.id = $1 AND b.user_id = $2`, id, userID,
	).Scan(&q.ID, &q.BrandID, &q.QueryText, &q.Category, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get query for user: %w", err)
	}
	return &q, nil
}

func (s *PostgresStore) ListQueries(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	return s.listQueries(ctx,
		`SELECT id, brand_id, query_text, category, is_active, created_at, updated_at
		 FROM monitored_queries WHERE brand_id = $1 ORDER BY created_at`, brandID)
}

func (s *PostgresStore) ListActiveQueries(ctx context.Context, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	return s.listQueries(ctx,
		`SELECT id, brand_id, query_text, category, is_active, created_at, updated_at
		 FROM monitored_queries WHERE brand_id = $1 AND is_active ORDER BY created_at`, brandID)
}

func (s *PostgresStore) listQueries(ctx context.Context, sql string, brandID uuid.UUID) ([]*models.MonitoredQuery, error) {
	rows, err := s.pool.Query(ctx, sql, brandID)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var queries []*models.MonitoredQuery
	for rows.Next() {
		var q models.MonitoredQuery
		if err := rows.Scan(&q.ID, &q.BrandID, &q.QueryText, &q.Category, &q.IsActive,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, &q)
	}
	return queries, rows.Err()
}

func (s *PostgresStore) UpdateQuery(ctx context.Context, query *models.MonitoredQuery) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE monitored_queries SET query_text = $1, category = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $4 AND brand_id = $5`,
		query.QueryText, query.Category, query.IsActive, query.ID, query.BrandID)
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuery removes the query; its historical results cascade via foreign key.
func (s *PostgresStore) DeleteQuery(ctx context.Context, id, brandID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM monitored_queries WHERE id = $1 AND brand_id = $2`, id, brandID)
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountQueries(ctx context.Context, brandID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM monitored_queries WHERE brand_id = $1`, brandID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count queries: %w", err)
	}
	return count, nil
}

// --- Query Results ---

func (s *PostgresStore) CreateQueryResult(ctx context.Context, result *models.QueryResult) error {
	mentions, err := json.Marshal(result.CompetitorMentions)
	if err != nil {
		return fmt.Errorf("marshal competitor mentions: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO query_results (id, query_id, engine, model_version, raw_response,
		   brand_mentioned, mention_position, is_top_recommendation, sentiment,
		   competitor_mentions, citations, run_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		result.ID, result.QueryID, result.Engine, result.ModelVersion, result.RawResponse,
		result.BrandMentioned, result.MentionPosition, result.IsTopRecommendation, result.Sentiment,
		mentions, result.Citations, result.RunDate, result.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create query result: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasResult(ctx context.Context, queryID uuid.UUID, engine models.Engine, runDate time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM query_results WHERE query_id = $1 AND engine = $2 AND run_date = $3
		 )`, queryID, engine, runDate).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check result exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListResultsByBrand(ctx context.Context, brandID uuid.UUID, filter ResultFilter) ([]*models.QueryResult, error) {
	sql := `SELECT r.id, r.query_id, r.engine, r.model_version, r.raw_response,
	          r.brand_mentioned, r.mention_position, r.is_top_recommendation, r.sentiment,
	          r.competitor_mentions, r.citations, r.run_date, r.created_at
	        FROM query_results r
	        JOIN monitored_queries q ON q.id = r.query_id
	        WHERE q.brand_id = $1`
	args := []any{brandID}

	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		sql += fmt.Sprintf(" AND r.run_date >= $%d", len(args))
	}
	if filter.Engine != "" {
		args = append(args, filter.Engine)
		sql += fmt.Sprintf(" AND r.engine = $%d", len(args))
	}
	sql += " ORDER BY r.created_at"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list results by brand: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func (s *PostgresStore) ListResultsByQuery(ctx context.Context, queryID uuid.UUID) ([]*models.QueryResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, query_id, engine, model_version, raw_response,
		   brand_mentioned, mention_position, is_top_recommendation, sentiment,
		   competitor_mentions, citations, run_date, created_at
		 FROM query_results WHERE query_id = $1
		 ORDER BY created_at DESC`, queryID)
	if err != nil {
		return nil, fmt.Errorf("list results by query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]*models.QueryResult, error) {
	var results []*models.QueryResult
	for rows.Next() {
		var r models.QueryResult
		var mentions []byte
		if err := rows.Scan(&r.ID, &r.QueryID, &r.Engine, &r.ModelVersion, &r.RawResponse,
			&r.BrandMentioned, &r.MentionPosition, &r.IsTopRecommendation, &r.Sentiment,
			&mentions, &r.Citations, &r.RunDate, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query result: %w", err)
		}
		if len(mentions) > 0 {
			if err := json.Unmarshal(mentions, &r.CompetitorMentions); err != nil {
				return nil, fmt.Errorf("unmarshal competitor mentions: %w", err)
			}
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
