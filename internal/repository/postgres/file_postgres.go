package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"datamorph/internal/model"
	"datamorph/internal/repository"
)

var fileColumns = []string{
	"id", "user_id", "project_id", "filename", "storage_path", "size", "mime_type", "format",
	"status", "processing_progress", "error_message", "created_at", "updated_at",
}

// FilePostgres is the files table.
type FilePostgres struct {
	db *sql.DB
}

func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create inserts f and returns the row as stored.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	q, args, err := psql.Insert("files").
		Columns(fileColumns...).
		Values(f.ID, f.UserID, f.ProjectID, f.Filename, f.StoragePath, f.Size, f.MimeType, f.Format,
			f.Status, f.ProcessingProgress, f.ErrorMessage, f.CreatedAt, f.UpdatedAt).
		Suffix("RETURNING " + strings.Join(fileColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanFile(r.db.QueryRowContext(ctx, q, args...))
}

func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	q, args, err := psql.Select(fileColumns...).From("files").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanFile(r.db.QueryRowContext(ctx, q, args...))
}

// List returns the newest files first, restricted to the filter.
func (r *FilePostgres) List(ctx context.Context, filter repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("list files: user id is required")
	}
	where := sq.And{sq.Eq{"user_id": filter.UserID}}
	if filter.ProjectID != "" {
		where = append(where, sq.Eq{"project_id": filter.ProjectID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countQ, countArgs, err := psql.Select("COUNT(*)").From("files").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	sel := psql.Select(fileColumns...).From("files").Where(where).OrderBy("created_at DESC", "id DESC")
	if pq.Limit > 0 {
		sel = sel.Limit(uint64(pq.Limit))
	}
	if pq.Offset > 0 {
		sel = sel.Offset(uint64(pq.Offset))
	}
	listQ, listArgs, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, listQ, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.File]{Items: items, Total: total}, nil
}

func (r *FilePostgres) UpdateProcessing(ctx context.Context, id string, u repository.ProcessingUpdate) error {
	const q = `
		UPDATE files
		SET status = $2, processing_progress = $3, error_message = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, u.Status, u.Progress, u.ErrorMessage)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanFile(row scanner) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.ProjectID,
		&f.Filename,
		&f.StoragePath,
		&f.Size,
		&f.MimeType,
		&f.Format,
		&f.Status,
		&f.ProcessingProgress,
		&f.ErrorMessage,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}
