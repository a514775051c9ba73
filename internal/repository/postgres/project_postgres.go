package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"datamorph/internal/model"
	"datamorph/internal/repository"
)

var projectColumns = []string{
	"id", "user_id", "name", "description", "status", "settings", "created_at", "updated_at",
}

// ProjectPostgres is the projects table.
type ProjectPostgres struct {
	db *sql.DB
}

func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

func (r *ProjectPostgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	settings, err := encodeSettings(p.Settings)
	if err != nil {
		return nil, err
	}
	q, args, err := psql.Insert("projects").
		Columns(projectColumns...).
		Values(p.ID, p.UserID, p.Name, p.Description, p.Status, settings, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING " + strings.Join(projectColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanProject(r.db.QueryRowContext(ctx, q, args...))
}

func (r *ProjectPostgres) FindByID(ctx context.Context, id string) (*model.Project, error) {
	q, args, err := psql.Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanProject(r.db.QueryRowContext(ctx, q, args...))
}

func (r *ProjectPostgres) List(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Project], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, err
	}

	sel := psql.Select(projectColumns...).From("projects").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id DESC")
	if pq.Limit > 0 {
		sel = sel.Limit(uint64(pq.Limit))
	}
	if pq.Offset > 0 {
		sel = sel.Offset(uint64(pq.Offset))
	}
	q, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Project]{Items: items, Total: total}, nil
}

// Update writes the mutable fields of p and bumps updated_at.
func (r *ProjectPostgres) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	settings, err := encodeSettings(p.Settings)
	if err != nil {
		return nil, err
	}
	q, args, err := psql.Update("projects").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("status", p.Status).
		Set("settings", settings).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING " + strings.Join(projectColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanProject(r.db.QueryRowContext(ctx, q, args...))
}

func (r *ProjectPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *ProjectPostgres) CountFiles(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE project_id = $1`, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func encodeSettings(s map[string]any) ([]byte, error) {
	if s == nil {
		s = map[string]any{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode project settings: %w", err)
	}
	return b, nil
}

func scanProject(row scanner) (*model.Project, error) {
	var (
		p        model.Project
		desc     sql.NullString
		settings []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&desc,
		&p.Status,
		&settings,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	p.Settings = map[string]any{}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &p.Settings); err != nil {
			return nil, fmt.Errorf("decode project settings: %w", err)
		}
	}
	return &p, nil
}
