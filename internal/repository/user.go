package repository

import (
	"database/sql"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const USER_COLUMNS = ` id, username, password, api_key, created, enabled `

// UserRepository provides persistence methods for the users table.
type UserRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewUserRepository(db *sql.DB, clock core.Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

// Save inserts a new user and returns its generated id.
// It will set Created to now if it's not provided (null or zero).
func (r *UserRepository) Save(u *domain.User) (int64, error) {
	if !u.Created.Valid {
		u.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}
	if !u.Enabled.Valid {
		u.Enabled = sql.NullBool{Bool: true, Valid: true}
	}

	base := `INSERT INTO users (username, password, api_key, created, enabled)
		VALUES (` + placeholders(1, 5) + `)`
	id, err := insertReturningID(r.db, base, u.Username, u.Password, u.ApiKey, formatDateInDatabaseNull(u.Created), u.Enabled)
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// FindByUsername fetches a user by exact username. Returns (nil, nil) if not found.
func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	return r.findOne(`SELECT `+USER_COLUMNS+` FROM users WHERE username = `+placeholder(1), username)
}

// FindByApiKey fetches an enabled user by api_key (exact match). Returns (nil, nil) if not found.
func (r *UserRepository) FindByApiKey(apiKey string) (*domain.User, error) {
	u, err := r.findOne(`SELECT `+USER_COLUMNS+` FROM users WHERE api_key = `+placeholder(1), apiKey)
	if err != nil || u == nil {
		return u, err
	}
	if u.Enabled.Valid && !u.Enabled.Bool {
		return nil, nil
	}
	return u, nil
}

func (r *UserRepository) FindById(id int64) (*domain.User, error) {
	return r.findOne(`SELECT `+USER_COLUMNS+` FROM users WHERE id = `+placeholder(1), id)
}

func (r *UserRepository) DeleteById(id int64) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = `+placeholder(1), id)
	return err
}

// FindAll returns all users ordered by id ascending.
func (r *UserRepository) FindAll() (*[]domain.User, error) {
	rows, err := r.db.Query(`SELECT ` + USER_COLUMNS + ` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &users, nil
}

func (r *UserRepository) findOne(query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.ApiKey,
		&u.Created,
		&u.Enabled,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
