package repository

import (
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const selectUserColumns = `
	SELECT id, username, password_hash, full_name, email, role, is_active, created_at, version
	FROM users
`

func userScanDst(user *domain.User) []any {
	return []any{
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.Version,
	}
}

func (r *Repository) getUser(where string, arg any) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.User{}
	if err := r.dbpool.QueryRowContext(ctx, selectUserColumns+where, arg).Scan(userScanDst(user)...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	return r.getUser("WHERE id = $1", id)
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	return r.getUser("WHERE username = $1", username)
}

// GetActiveStaff 返回所有在职的员工，用于发布通知
func (r *Repository) GetActiveStaff() ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := selectUserColumns + "WHERE is_active = TRUE AND role = $1 ORDER BY id"
	rows, err := r.dbpool.QueryContext(ctx, query, domain.RoleStaff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(userScanDst(user)...); err != nil {
			return nil, err
		}
		staff = append(staff, user)
	}

	return staff, rows.Err()
}

// CreateUser 新用户默认在职
func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.FullName, user.Email, user.Role).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}
