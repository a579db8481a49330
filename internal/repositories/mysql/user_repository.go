package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

// mysqlDuplicateEntry, UNIQUE ihlalinde MySQL'in döndürdüğü hata kodudur.
const mysqlDuplicateEntry = 1062

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, full_name, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		user.Username, user.Email, user.FullName, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

const userColumns = "id, username, email, full_name, password, created_at, updated_at"

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password,
		&user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + cond

	exec := database.Executor(ctx, r.db)
	user, err := scanUser(exec.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "find user")
	}

	roles, err := r.roles(ctx, exec, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func (r *UserRepository) roles(ctx context.Context, exec database.QueryExecutor, userID int64) ([]models.Role, error) {
	rows, err := exec.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ? ORDER BY role", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		roles = append(roles, models.Role(role))
	}
	return roles, rows.Err()
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := database.Executor(ctx, r.db).
		QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID int64, role models.Role) error {
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role) VALUES (?, ?)", userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET username = ?, full_name = ?, password = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		user.Username, user.FullName, user.Password, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := expectOneRow(result, "update user"); err != nil {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page models.Page) ([]*models.User, error) {
	exec := database.Executor(ctx, r.db)
	rows, err := exec.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Roller satırlar kapandıktan sonra okunur; transaction içinde aynı
	// bağlantıda iki açık sonuç kümesi olamaz.
	for _, user := range users {
		if user.Roles, err = r.roles(ctx, exec, user.ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
