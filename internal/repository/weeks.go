package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

func (r *Repository) GetWeekByID(id string) (*domain.Week, error) {
	query := `
		SELECT week_number, year, status, created_at, updated_at, version
		FROM weeks WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	week := &domain.Week{
		ID: id,
	}

	dst := []any{&week.WeekNumber, &week.Year, &week.Status, &week.CreatedAt, &week.UpdatedAt, &week.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return week, nil
}

func (r *Repository) CountShiftsByWeekID(id string) (int, error) {
	query := `SELECT COUNT(*) FROM shifts WHERE week_id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	var count int
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// PublishWeek 将草稿状态的周改为已发布。
// 如果周已经发布或者版本号不匹配，返回 sql.ErrNoRows
func (r *Repository) PublishWeek(week *domain.Week) error {
	query := `
		UPDATE weeks
		SET
			status = $1,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $2 AND version = $3 AND status = $4
		RETURNING status, updated_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{domain.WeekStatusPublished, week.ID, week.Version, domain.WeekStatusDraft}
	dst := []any{&week.Status, &week.UpdatedAt, &week.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// ensureWeek 在事务中找到 (weekNumber, year) 对应的周，不存在时以草稿状态创建
func ensureWeek(ctx context.Context, tx *sql.Tx, weekNumber, year int) (*domain.Week, error) {
	query := `
		INSERT INTO weeks (week_number, year)
		VALUES ($1, $2)
		ON CONFLICT (week_number, year) DO UPDATE SET week_number = EXCLUDED.week_number
		RETURNING id, status, created_at, updated_at, version
	`

	week := &domain.Week{
		WeekNumber: weekNumber,
		Year:       year,
	}

	dst := []any{&week.ID, &week.Status, &week.CreatedAt, &week.UpdatedAt, &week.Version}
	if err := tx.QueryRowContext(ctx, query, weekNumber, year).Scan(dst...); err != nil {
		return nil, err
	}

	return week, nil
}
