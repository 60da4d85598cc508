package catalog

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	UpsertProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	GetProjectByPath(ctx context.Context, path string) (*Project, error)
	ListProjects(ctx context.Context, limit int) ([]*Project, error)
	CountProjects(ctx context.Context) (int, error)
	DeleteProject(ctx context.Context, id string) error

	CreateOperation(ctx context.Context, op *Operation) error
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)
	ListOperationsByProject(ctx context.Context, projectPath string, limit int) ([]*Operation, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// UpsertProject inserts a project or, for a known path, bumps its
// last_opened_at and fills in a missing template.
func (r *SQLiteRepository) UpsertProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, path, template, created_at, last_opened_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			last_opened_at = excluded.last_opened_at,
			template = COALESCE(excluded.template, projects.template)
	`, p.ID, p.Name, p.Path, nullString(p.Template),
		formatTime(p.CreatedAt), formatTime(p.LastOpenedAt))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, path, template, created_at, last_opened_at
		FROM projects WHERE id = ?
	`, id)
	return r.scanProject(row)
}

func (r *SQLiteRepository) GetProjectByPath(ctx context.Context, path string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, path, template, created_at, last_opened_at
		FROM projects WHERE path = ?
	`, path)
	return r.scanProject(row)
}

func (r *SQLiteRepository) scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var tmpl sql.NullString
	var createdAt, lastOpenedAt string

	err := row.Scan(&p.ID, &p.Name, &p.Path, &tmpl, &createdAt, &lastOpenedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Template = tmpl.String
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.LastOpenedAt, _ = time.Parse(time.RFC3339Nano, lastOpenedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context, limit int) ([]*Project, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, path, template, created_at, last_opened_at
		FROM projects ORDER BY last_opened_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var tmpl sql.NullString
		var createdAt, lastOpenedAt string

		if err := rows.Scan(&p.ID, &p.Name, &p.Path, &tmpl, &createdAt, &lastOpenedAt); err != nil {
			return nil, err
		}
		p.Template = tmpl.String
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		p.LastOpenedAt, _ = time.Parse(time.RFC3339Nano, lastOpenedAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CreateOperation(ctx context.Context, op *Operation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO operations (id, type, project_path, target_path, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, op.ID, op.Type, op.ProjectPath, nullString(op.TargetPath), op.Status, nullString(op.Error),
		formatTime(op.CreatedAt))
	return err
}

func (r *SQLiteRepository) ListOperations(ctx context.Context, limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, project_path, target_path, status, error, created_at
		FROM operations ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanOperations(rows)
}

func (r *SQLiteRepository) ListOperationsByProject(ctx context.Context, projectPath string, limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, project_path, target_path, status, error, created_at
		FROM operations WHERE project_path = ? ORDER BY created_at DESC LIMIT ?
	`, projectPath, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanOperations(rows)
}

func (r *SQLiteRepository) scanOperations(rows *sql.Rows) ([]*Operation, error) {
	var ops []*Operation
	for rows.Next() {
		var op Operation
		var target, errMsg sql.NullString
		var createdAt string

		if err := rows.Scan(&op.ID, &op.Type, &op.ProjectPath, &target, &op.Status, &errMsg, &createdAt); err != nil {
			return nil, err
		}
		op.TargetPath = target.String
		op.Error = errMsg.String
		op.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		ops = append(ops, &op)
	}
	return ops, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
