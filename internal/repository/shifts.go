package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

// 班次和所属周一起查询，保证行数据和周状态不会不一致
const selectShiftColumns = `
	SELECT
		s.id,
		s.name,
		to_char(s.date, 'YYYY-MM-DD'),
		to_char(s.start_time, 'HH24:MI'),
		to_char(s.end_time, 'HH24:MI'),
		s.created_at,
		s.version,
		w.id,
		w.week_number,
		w.year,
		w.status,
		w.created_at,
		w.updated_at,
		w.version
	FROM shifts s
	JOIN weeks w ON w.id = s.week_id
`

func shiftScanDst(shift *domain.Shift) []any {
	return []any{
		&shift.ID,
		&shift.Name,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.CreatedAt,
		&shift.Version,
		&shift.Week.ID,
		&shift.Week.WeekNumber,
		&shift.Week.Year,
		&shift.Week.Status,
		&shift.Week.CreatedAt,
		&shift.Week.UpdatedAt,
		&shift.Week.Version,
	}
}

func (r *Repository) GetShiftsByWeek(weekNumber, year int) ([]*domain.Shift, error) {
	query := selectShiftColumns + `
		WHERE w.week_number = $1 AND w.year = $2
		ORDER BY s.date, s.start_time, s.name
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, weekNumber, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.Shift{}
	for rows.Next() {
		shift := &domain.Shift{}
		if err := rows.Scan(shiftScanDst(shift)...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShiftByID(id string) (*domain.Shift, error) {
	query := selectShiftColumns + `WHERE s.id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	shift := &domain.Shift{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(shiftScanDst(shift)...); err != nil {
		return nil, err
	}

	return shift, nil
}

// CreateShift 插入班次，所属周由班次日期推算，不存在时自动以草稿状态创建。
// 如果所属周已经发布，返回 ErrWeekPublished
func (r *Repository) CreateShift(shift *domain.Shift) error {
	date, err := time.Parse(calendar.DateLayout, shift.Date)
	if err != nil {
		return err
	}
	weekNumber, year := calendar.CalculateWeekAndYear(date)

	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	week, err := ensureWeek(ctx, tx, weekNumber, year)
	if err != nil {
		return err
	}
	if !week.IsDraft() {
		return ErrWeekPublished
	}

	query := `
		INSERT INTO shifts (week_id, name, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{week.ID, shift.Name, shift.Date, shift.StartTime, shift.EndTime}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	shift.Week = *week
	return nil
}

// UpdateShift 更新班次。日期改变时班次可能会移动到另一周，原来的周和目标周都必须是草稿状态
func (r *Repository) UpdateShift(shift *domain.Shift) error {
	date, err := time.Parse(calendar.DateLayout, shift.Date)
	if err != nil {
		return err
	}
	weekNumber, year := calendar.CalculateWeekAndYear(date)

	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockShiftWeek(ctx, tx, shift.ID); err != nil {
		return err
	}

	week, err := ensureWeek(ctx, tx, weekNumber, year)
	if err != nil {
		return err
	}
	if !week.IsDraft() {
		return ErrWeekPublished
	}

	query := `
		UPDATE shifts
		SET
			week_id = $1,
			name = $2,
			date = $3,
			start_time = $4,
			end_time = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`
	params := []any{week.ID, shift.Name, shift.Date, shift.StartTime, shift.EndTime, shift.ID, shift.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	shift.Week = *week
	return nil
}

// DeleteShift 删除草稿周中的班次。所属周已经发布时返回 ErrWeekPublished，班次不存在时返回 sql.ErrNoRows
func (r *Repository) DeleteShift(id string) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockShiftWeek(ctx, tx, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// lockShiftWeek 锁住班次当前所属的周直到事务结束，期间发布该周的 UPDATE 会被阻塞。
// 周不是草稿状态时返回 ErrWeekPublished
func lockShiftWeek(ctx context.Context, tx *sql.Tx, shiftID string) error {
	query := `
		SELECT w.status
		FROM shifts s
		JOIN weeks w ON w.id = s.week_id
		WHERE s.id = $1
		FOR UPDATE OF w
	`

	var status domain.WeekStatus
	if err := tx.QueryRowContext(ctx, query, shiftID).Scan(&status); err != nil {
		return err
	}
	if status != domain.WeekStatusDraft {
		return ErrWeekPublished
	}

	return nil
}
