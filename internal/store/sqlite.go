package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wheel-tracker/internal/errors"
	"wheel-tracker/internal/models"
	"wheel-tracker/pkg/utils"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Tracked stock symbols
	CREATE TABLE IF NOT EXISTS tickers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		recommendation TEXT NOT NULL DEFAULT 'NO',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Brokerage accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Wheel positions; the three lifecycle columns are NULL while active
	CREATE TABLE IF NOT EXISTS wheels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker_id INTEGER NOT NULL,
		account_id INTEGER,
		quantity INTEGER NOT NULL DEFAULT 1,
		is_active INTEGER NOT NULL,
		total_profit REAL,
		total_days_active INTEGER,
		collateral REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (ticker_id) REFERENCES tickers(id),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	-- Option legs, immutable once created
	CREATE TABLE IF NOT EXISTS option_legs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wheel_id INTEGER NOT NULL,
		purchase_time DATETIME NOT NULL,
		expiration DATE NOT NULL,
		strike REAL NOT NULL,
		premium REAL NOT NULL,
		price_at_sale REAL NOT NULL,
		side TEXT NOT NULL CHECK (side IN ('C', 'P')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (wheel_id) REFERENCES wheels(id) ON DELETE CASCADE
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_tickers_symbol ON tickers(symbol);
	CREATE INDEX IF NOT EXISTS idx_wheels_ticker ON wheels(ticker_id);
	CREATE INDEX IF NOT EXISTS idx_wheels_active ON wheels(is_active);
	CREATE INDEX IF NOT EXISTS idx_legs_wheel ON option_legs(wheel_id);
	CREATE INDEX IF NOT EXISTS idx_legs_order ON option_legs(wheel_id, expiration DESC, purchase_time DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateTicker inserts a new tracked ticker.
func (s *SQLiteStore) CreateTicker(ctx context.Context, symbol string, rec models.Recommendation) (*models.Ticker, error) {
	symbol = strings.ToUpper(symbol)
	if rec == "" {
		rec = models.RecommendationNone
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tickers (symbol, recommendation) VALUES (?, ?)`,
		symbol, string(rec))
	if err != nil {
		return nil, errors.Wrapf(err, "creating ticker %s", symbol)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "reading ticker id")
	}

	return &models.Ticker{ID: id, Symbol: symbol, Recommendation: rec}, nil
}

// GetTicker retrieves a ticker by symbol.
func (s *SQLiteStore) GetTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	var t models.Ticker
	var rec string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, recommendation, created_at FROM tickers WHERE symbol = ?`,
		strings.ToUpper(symbol)).Scan(&t.ID, &t.Symbol, &rec, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrTickerNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting ticker %s", symbol)
	}
	t.Recommendation = models.Recommendation(rec)
	return &t, nil
}

// ListTickers returns all tracked tickers ordered by symbol.
func (s *SQLiteStore) ListTickers(ctx context.Context) ([]models.Ticker, error) {
	return s.queryTickers(ctx,
		`SELECT id, symbol, recommendation, created_at FROM tickers ORDER BY symbol`)
}

// ListTickersByRecommendation returns tickers with the given tag.
func (s *SQLiteStore) ListTickersByRecommendation(ctx context.Context, rec models.Recommendation) ([]models.Ticker, error) {
	return s.queryTickers(ctx,
		`SELECT id, symbol, recommendation, created_at FROM tickers WHERE recommendation = ? ORDER BY symbol`,
		string(rec))
}

func (s *SQLiteStore) queryTickers(ctx context.Context, query string, args ...interface{}) ([]models.Ticker, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing tickers")
	}
	defer rows.Close()

	var tickers []models.Ticker
	for rows.Next() {
		var t models.Ticker
		var rec string
		if err := rows.Scan(&t.ID, &t.Symbol, &rec, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning ticker")
		}
		t.Recommendation = models.Recommendation(rec)
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// UpdateRecommendation changes a ticker's recommendation tag, the only
// mutable ticker field.
func (s *SQLiteStore) UpdateRecommendation(ctx context.Context, symbol string, rec models.Recommendation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickers SET recommendation = ? WHERE symbol = ?`,
		string(rec), strings.ToUpper(symbol))
	if err != nil {
		return errors.Wrapf(err, "updating ticker %s", symbol)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrTickerNotFound
	}
	return nil
}

// DeleteTicker removes a ticker.
func (s *SQLiteStore) DeleteTicker(ctx context.Context, symbol string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tickers WHERE symbol = ?`, strings.ToUpper(symbol))
	if err != nil {
		return errors.Wrapf(err, "deleting ticker %s", symbol)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrTickerNotFound
	}
	return nil
}

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, name string) (*models.Account, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO accounts (name) VALUES (?)`, name)
	if err != nil {
		return nil, errors.Wrapf(err, "creating account %s", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "reading account id")
	}
	return &models.Account{ID: id, Name: name}, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM accounts ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing accounts")
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, errors.Wrap(err, "scanning account")
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateWheel inserts a new wheel and assigns its ID.
func (s *SQLiteStore) CreateWheel(ctx context.Context, w *models.Wheel) error {
	if w.Quantity < 1 {
		w.Quantity = 1
	}

	var accountID interface{}
	if w.Account != nil {
		accountID = w.Account.ID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wheels (ticker_id, account_id, quantity, is_active) VALUES (?, ?, ?, ?)`,
		w.TickerID, accountID, w.Quantity, boolToInt(w.Active))
	if err != nil {
		return errors.Wrap(err, "creating wheel")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading wheel id")
	}
	w.ID = id
	return nil
}

// GetWheel retrieves a wheel with its legs in the invariant order.
func (s *SQLiteStore) GetWheel(ctx context.Context, id int64) (*models.Wheel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT w.id, w.ticker_id, t.symbol, w.quantity, w.is_active,
		       w.total_profit, w.total_days_active, w.collateral,
		       a.id, a.name
		FROM wheels w
		JOIN tickers t ON t.id = w.ticker_id
		LEFT JOIN accounts a ON a.id = w.account_id
		WHERE w.id = ?`, id)

	w, err := scanWheel(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrWheelNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting wheel %d", id)
	}

	if err := s.loadLegs(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWheels returns wheels matching the filter, newest first, legs loaded.
func (s *SQLiteStore) ListWheels(ctx context.Context, filter WheelFilter) ([]models.Wheel, error) {
	query := `
		SELECT w.id, w.ticker_id, t.symbol, w.quantity, w.is_active,
		       w.total_profit, w.total_days_active, w.collateral,
		       a.id, a.name
		FROM wheels w
		JOIN tickers t ON t.id = w.ticker_id
		LEFT JOIN accounts a ON a.id = w.account_id
		WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND t.symbol = ?"
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.Active != nil {
		query += " AND w.is_active = ?"
		args = append(args, boolToInt(*filter.Active))
	}
	query += " ORDER BY w.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing wheels")
	}
	defer rows.Close()

	var wheels []models.Wheel
	for rows.Next() {
		w, err := scanWheel(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning wheel")
		}
		wheels = append(wheels, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range wheels {
		if err := s.loadLegs(ctx, &wheels[i]); err != nil {
			return nil, err
		}
	}
	return wheels, nil
}

// UpdateWheelLifecycle writes the active flag and the three lifecycle fields.
// Nothing else on a wheel is mutable.
func (s *SQLiteStore) UpdateWheelLifecycle(ctx context.Context, w *models.Wheel) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wheels
		SET is_active = ?, total_profit = ?, total_days_active = ?, collateral = ?
		WHERE id = ?`,
		boolToInt(w.Active), roundPtr(w.TotalProfit), w.TotalDaysActive, roundPtr(w.Collateral), w.ID)
	if err != nil {
		return errors.Wrapf(err, "updating wheel %d", w.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrWheelNotFound
	}
	return nil
}

// DeleteWheel removes a wheel and its legs.
func (s *SQLiteStore) DeleteWheel(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wheels WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting wheel %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrWheelNotFound
	}
	return nil
}

// AddLeg inserts a new option leg. Prices are stored with cent precision.
func (s *SQLiteStore) AddLeg(ctx context.Context, leg *models.OptionLeg) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO option_legs (wheel_id, purchase_time, expiration, strike, premium, price_at_sale, side)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		leg.WheelID, leg.PurchaseTime, leg.Expiration.Format("2006-01-02"),
		utils.RoundCents(leg.Strike), utils.RoundCents(leg.Premium),
		utils.RoundCents(leg.PriceAtSale), string(leg.Side))
	if err != nil {
		return errors.Wrapf(err, "adding leg to wheel %d", leg.WheelID)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading leg id")
	}
	leg.ID = id
	return nil
}

// loadLegs fills a wheel's legs in the invariant order.
func (s *SQLiteStore) loadLegs(ctx context.Context, w *models.Wheel) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wheel_id, purchase_time, expiration, strike, premium, price_at_sale, side
		FROM option_legs
		WHERE wheel_id = ?
		ORDER BY expiration DESC, purchase_time DESC`, w.ID)
	if err != nil {
		return errors.Wrapf(err, "loading legs for wheel %d", w.ID)
	}
	defer rows.Close()

	w.Legs = nil
	for rows.Next() {
		var leg models.OptionLeg
		var expiration time.Time
		var side string
		if err := rows.Scan(&leg.ID, &leg.WheelID, &leg.PurchaseTime, &expiration,
			&leg.Strike, &leg.Premium, &leg.PriceAtSale, &side); err != nil {
			return errors.Wrap(err, "scanning leg")
		}
		// The driver converts the DATE column to a UTC time.Time; keep the
		// date part only.
		leg.Expiration = time.Date(expiration.Year(), expiration.Month(), expiration.Day(),
			0, 0, 0, 0, time.UTC)
		leg.Side = models.OptionSide(side)
		w.Legs = append(w.Legs, leg)
	}
	return rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWheel(row rowScanner) (*models.Wheel, error) {
	var w models.Wheel
	var active int
	var accountID sql.NullInt64
	var accountName sql.NullString

	err := row.Scan(&w.ID, &w.TickerID, &w.Symbol, &w.Quantity, &active,
		&w.TotalProfit, &w.TotalDaysActive, &w.Collateral,
		&accountID, &accountName)
	if err != nil {
		return nil, err
	}

	w.Active = active != 0
	if accountID.Valid {
		w.Account = &models.Account{ID: accountID.Int64, Name: accountName.String}
	}
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func roundPtr(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return utils.RoundCents(*v)
}
