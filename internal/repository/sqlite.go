package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/prizewheel/internal/errors"
	"github.com/abrezinsky/prizewheel/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			attempts_used INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS gifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			star_price INTEGER NOT NULL,
			img TEXT,
			won_date TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS spins (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			prize_name TEXT NOT NULL,
			star_price INTEGER NOT NULL,
			img TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_user ON gifts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_user ON spins(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// app_url is intentionally not set here - app.go fills it in on startup
	defaultSettings := map[string]string{
		"spins_open": "true",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== User Methods ====================

// EnsureUser creates the user with no attempts used if it does not exist
func (r *Repository) EnsureUser(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, attempts_used, created_at) VALUES (?, 0, ?)`,
		userID, time.Now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUser returns the user with its gifts. AttemptsLeft is left for the caller.
func (r *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, attempts_used, created_at FROM users WHERE user_id = ?`, userID).
		Scan(&u.UserID, &u.AttemptsUsed, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	gifts, err := r.ListGifts(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Gifts = gifts
	return &u, nil
}

// ListUsers returns every user with its gifts, newest first
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, attempts_used, created_at FROM users ORDER BY created_at DESC, user_id`)
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UserID, &u.AttemptsUsed, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Gifts are loaded after the cursor is closed; the pool has a single connection
	for i := range users {
		gifts, err := r.ListGifts(ctx, users[i].UserID)
		if err != nil {
			return nil, err
		}
		users[i].Gifts = gifts
	}
	return users, nil
}

// SetAttemptsUsed overwrites the used attempt count
func (r *Repository) SetAttemptsUsed(ctx context.Context, userID int64, used int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET attempts_used = ? WHERE user_id = ?`, used, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Gift Methods ====================

// ListGifts returns a user's gifts in the order they were won
func (r *Repository) ListGifts(ctx context.Context, userID int64) ([]models.Gift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, star_price, COALESCE(img, ''), won_date FROM gifts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gifts := []models.Gift{}
	for rows.Next() {
		var g models.Gift
		if err := rows.Scan(&g.Name, &g.StarPrice, &g.Img, &g.Date); err != nil {
			return nil, err
		}
		gifts = append(gifts, g)
	}
	return gifts, rows.Err()
}

// AddGift appends a gift to the user's inventory
func (r *Repository) AddGift(ctx context.Context, userID int64, gift models.Gift) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gifts (user_id, name, star_price, img, won_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, gift.Name, gift.StarPrice, gift.Img, gift.Date, time.Now())
	return err
}

// DeleteGift removes the gift at position index (0-based, in won order)
func (r *Repository) DeleteGift(ctx context.Context, userID int64, index int) (*models.Gift, error) {
	if index < 0 {
		return nil, errors.InvalidInput("gift index must not be negative")
	}

	var id int64
	var g models.Gift
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, star_price, COALESCE(img, ''), won_date FROM gifts WHERE user_id = ? ORDER BY id LIMIT 1 OFFSET ?`,
		userID, index).Scan(&id, &g.Name, &g.StarPrice, &g.Img, &g.Date)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM gifts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// ==================== Spin Methods ====================

// RecordSpin consumes one attempt and stores the outcome in a single transaction.
// It returns ErrAttemptsExhausted, with nothing written, when attemptsUsed has
// reached maxAttempts. The returned count is attempts used after the spin.
func (r *Repository) RecordSpin(ctx context.Context, rec models.SpinRecord, wonDate string, maxAttempts int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, attempts_used, created_at) VALUES (?, 0, ?)`,
		rec.UserID, rec.CreatedAt); err != nil {
		return 0, err
	}

	var used int
	if err := tx.QueryRowContext(ctx, `SELECT attempts_used FROM users WHERE user_id = ?`, rec.UserID).Scan(&used); err != nil {
		return 0, err
	}
	if used >= maxAttempts {
		return used, ErrAttemptsExhausted
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET attempts_used = attempts_used + 1 WHERE user_id = ?`, rec.UserID); err != nil {
		return 0, err
	}

	if rec.Prize.IsWin() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gifts (user_id, name, star_price, img, won_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.UserID, rec.Prize.Name, rec.Prize.StarPrice, rec.Prize.Img, wonDate, rec.CreatedAt); err != nil {
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO spins (id, user_id, prize_name, star_price, img, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Prize.Name, rec.Prize.StarPrice, rec.Prize.Img, rec.CreatedAt); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return used + 1, nil
}

// ListSpins returns a user's most recent spins, newest first
func (r *Repository) ListSpins(ctx context.Context, userID int64, limit int) ([]models.SpinRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, prize_name, star_price, COALESCE(img, ''), created_at
		FROM spins WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spins := []models.SpinRecord{}
	for rows.Next() {
		var s models.SpinRecord
		if err := rows.Scan(&s.ID, &s.UserID, &s.Prize.Name, &s.Prize.StarPrice, &s.Prize.Img, &s.CreatedAt); err != nil {
			return nil, err
		}
		spins = append(spins, s)
	}
	return spins, rows.Err()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting saves a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetStats returns activity totals
func (r *Repository) GetStats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM spins),
			(SELECT COUNT(*) FROM gifts),
			(SELECT COALESCE(SUM(star_price), 0) FROM gifts)
	`).Scan(&s.Users, &s.Spins, &s.Gifts, &s.StarsSpent)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// validTables lists the tables ClearTable may touch
var validTables = map[string]bool{
	"spins":    true,
	"gifts":    true,
	"users":    true,
	"settings": true,
}

// ClearTable deletes every row from a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
