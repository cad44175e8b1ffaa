package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
)

// Postgres implements Index on Postgres with the pgvector extension.
// All namespaces share one table; cosine distance is computed server-side
// with the <=> operator, and metadata predicates are evaluated in SQL
// against a JSONB column.
type Postgres struct {
	db         *sql.DB
	dimensions int
}

// NewPostgres opens the database and prepares the embedding table.
func NewPostgres(dsn string, dimensions int) (*Postgres, error) {
	if dimensions <= 0 {
		return nil, errors.Errorf("invalid embedding dimensions: %d", dimensions)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Postgres{db: db, dimensions: dimensions}, nil
}

// Migrate creates the pgvector extension and the embedding table.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embedding (
			id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			updated_ts BIGINT NOT NULL,
			PRIMARY KEY (namespace, id)
		)`, p.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_embedding_namespace ON embedding (namespace)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration failed: %s", firstLine(stmt))
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Upsert(ctx context.Context, vectors []Vector, namespace string) error {
	stmt := `
		INSERT INTO embedding (id, namespace, embedding, metadata, updated_ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			updated_ts = EXCLUDED.updated_ts
	`

	now := time.Now().Unix()
	for _, v := range vectors {
		metadata, err := json.Marshal(v.Metadata)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal metadata for %s", v.ID)
		}
		if _, err := p.db.ExecContext(ctx, stmt, v.ID, namespace, pgvector.NewVector(v.Values), metadata, now); err != nil {
			return errors.Wrapf(err, "failed to upsert vector %s", v.ID)
		}
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, vector []float32, topK int, namespace string, filter Filter) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	qv := pgvector.NewVector(vector)
	where, args := []string{"namespace = $2"}, []any{qv, namespace}

	filterWhere, filterArgs, err := buildFilterSQL(filter, len(args))
	if err != nil {
		return nil, err
	}
	where = append(where, filterWhere...)
	args = append(args, filterArgs...)

	args = append(args, topK)

	// The <=> operator computes cosine distance (1 - cosine_similarity).
	query := `
		SELECT id, metadata, 1 - (embedding <=> $1) AS score
		FROM embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY embedding <=> $1
		LIMIT $` + fmt.Sprint(len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "query failed: %v", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadata []byte
		if err := rows.Scan(&m.ID, &metadata, &m.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan match")
		}
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal metadata for %s", m.ID)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (p *Postgres) Delete(ctx context.Context, filter Filter, namespace string) error {
	where, args := []string{"namespace = $1"}, []any{namespace}

	filterWhere, filterArgs, err := buildFilterSQL(filter, len(args))
	if err != nil {
		return err
	}
	where = append(where, filterWhere...)
	args = append(args, filterArgs...)

	stmt := `DELETE FROM embedding WHERE ` + strings.Join(where, " AND ")
	if _, err := p.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to delete vectors")
	}
	return nil
}

// buildFilterSQL translates a Filter into SQL conditions against the JSONB
// metadata column. argOffset is the number of placeholders already in use.
func buildFilterSQL(filter Filter, argOffset int) ([]string, []any, error) {
	var where []string
	var args []any

	// Deterministic condition order keeps query plans stable.
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	next := func() string {
		return fmt.Sprintf("$%d", argOffset+len(args)+1)
	}

	for _, field := range fields {
		cond := filter[field]
		accessor := fmt.Sprintf("metadata->>'%s'", field)

		ops, isOps := cond.(map[string]any)
		if !isOps {
			if n, ok := toFloat(cond); ok {
				where = append(where, fmt.Sprintf("(%s)::numeric = %s", accessor, next()))
				args = append(args, n)
			} else {
				where = append(where, accessor+" = "+next())
				args = append(args, fmt.Sprint(cond))
			}
			continue
		}

		for op, operand := range ops {
			switch op {
			case "$in":
				list, err := toStringSlice(operand)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "bad $in operand for %s", field)
				}
				where = append(where, accessor+" = ANY("+next()+")")
				args = append(args, pq.Array(list))
			case "$gte":
				n, ok := toFloat(operand)
				if !ok {
					return nil, nil, errors.Errorf("non-numeric $gte operand for %s", field)
				}
				where = append(where, fmt.Sprintf("(%s)::numeric >= %s", accessor, next()))
				args = append(args, n)
			case "$lte":
				n, ok := toFloat(operand)
				if !ok {
					return nil, nil, errors.Errorf("non-numeric $lte operand for %s", field)
				}
				where = append(where, fmt.Sprintf("(%s)::numeric <= %s", accessor, next()))
				args = append(args, n)
			default:
				return nil, nil, errors.Errorf("unsupported filter operator %q", op)
			}
		}
	}
	return where, args, nil
}

func toStringSlice(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("non-string element %v", item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.Errorf("unsupported list type %T", v)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
