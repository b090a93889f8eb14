package persist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pixil98/go-town/internal/protocol"
)

// SQLiteStore persists players and pets in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the
// schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// In-memory databases exist per connection; pin the pool to one so
	// the schema doesn't vanish between goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			user_id TEXT PRIMARY KEY,
			user_name TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			rotation TEXT NOT NULL DEFAULT 'front',
			moving INTEGER NOT NULL DEFAULT 0,
			login_time INTEGER,
			logout_time INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			pet_id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			health INTEGER NOT NULL,
			hunger INTEGER NOT NULL,
			happiness INTEGER NOT NULL,
			in_hospital INTEGER NOT NULL DEFAULT 0,
			sick INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (owner_id) REFERENCES players(user_id)
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOrCreatePlayer(ctx context.Context, userID, userName string, loc protocol.PlayerLocation) (*protocol.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, user_name, x, y, rotation, moving FROM players WHERE user_id = ?`, userID)

	var p protocol.Player
	var moving int
	err := row.Scan(&p.ID, &p.UserName, &p.Location.X, &p.Location.Y, &p.Location.Rotation, &moving)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO players (user_id, user_name, x, y, rotation, moving) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, userName, loc.X, loc.Y, string(loc.Rotation), boolInt(loc.Moving))
		if err != nil {
			return nil, fmt.Errorf("creating player record: %w", err)
		}
		return &protocol.Player{ID: userID, UserName: userName, Location: loc}, nil
	case err != nil:
		return nil, fmt.Errorf("querying player record: %w", err)
	}
	p.Location.Moving = moving != 0
	return &p, nil
}

func (s *SQLiteStore) SetLocation(ctx context.Context, userID string, loc protocol.PlayerLocation) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET x = ?, y = ?, rotation = ?, moving = ? WHERE user_id = ?`,
		loc.X, loc.Y, string(loc.Rotation), boolInt(loc.Moving), userID)
	return err
}

func (s *SQLiteStore) SetLoginTime(ctx context.Context, userID string, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET login_time = ? WHERE user_id = ?`, t.Unix(), userID)
	return err
}

func (s *SQLiteStore) SetLogoutTime(ctx context.Context, userID string, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET logout_time = ? WHERE user_id = ?`, t.Unix(), userID)
	return err
}

func (s *SQLiteStore) GetLogoutTime(ctx context.Context, userID string) (time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT logout_time FROM players WHERE user_id = ?`, userID)
	var unix sql.NullInt64
	err := row.Scan(&unix)
	if err == sql.ErrNoRows || !unix.Valid {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix.Int64, 0), nil
}

func (s *SQLiteStore) GetPet(ctx context.Context, userID string) (*protocol.Pet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT pet_id, owner_id, name, type, health, hunger, happiness, in_hospital, sick
		 FROM pets WHERE owner_id = ?`, userID)

	var p protocol.Pet
	var inHospital, sick int
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Health, &p.Hunger, &p.Happiness, &inHospital, &sick)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying pet record: %w", err)
	}
	p.InHospital = inHospital != 0
	p.Sick = sick != 0
	return &p, nil
}

func (s *SQLiteStore) CreatePet(ctx context.Context, pet protocol.Pet) (bool, error) {
	existing, err := s.GetPet(ctx, pet.OwnerID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return existing.ID == pet.ID, nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pets (pet_id, owner_id, name, type, health, hunger, happiness, in_hospital, sick)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pet.ID, pet.OwnerID, pet.Name, string(pet.Type),
		pet.Health, pet.Hunger, pet.Happiness, boolInt(pet.InHospital), boolInt(pet.Sick))
	if err != nil {
		return false, fmt.Errorf("creating pet record: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) SetMeter(ctx context.Context, ownerID, petID string, meter protocol.Meter, value int) error {
	var column string
	switch meter {
	case protocol.MeterHealth:
		column = "health"
	case protocol.MeterHunger:
		column = "hunger"
	case protocol.MeterHappiness:
		column = "happiness"
	default:
		return fmt.Errorf("unknown meter %q", meter)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE pets SET `+column+` = ? WHERE owner_id = ? AND pet_id = ?`,
		value, ownerID, petID)
	return err
}

func (s *SQLiteStore) SetHospitalStatus(ctx context.Context, ownerID, petID string, inHospital bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pets SET in_hospital = ? WHERE owner_id = ? AND pet_id = ?`,
		boolInt(inHospital), ownerID, petID)
	return err
}

func (s *SQLiteStore) SetSickStatus(ctx context.Context, ownerID, petID string, sick bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pets SET sick = ? WHERE owner_id = ? AND pet_id = ?`,
		boolInt(sick), ownerID, petID)
	return err
}

func (s *SQLiteStore) DeletePet(ctx context.Context, ownerID, petID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pets WHERE owner_id = ? AND pet_id = ?`, ownerID, petID)
	return err
}

func (s *SQLiteStore) TransferPet(ctx context.Context, fromID, toID, petID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pets SET owner_id = ? WHERE owner_id = ? AND pet_id = ?
		 AND NOT EXISTS (SELECT 1 FROM pets WHERE owner_id = ?)`,
		toID, fromID, petID, toID)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
