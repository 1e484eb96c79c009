package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"espresso-log/internal/domain"
)

// Store is the embedded database behind the domain services. The voice
// pipeline never touches it directly; it only sees the service interfaces.
type Store struct {
	db *sql.DB

	Shots     *ShotStore
	Beans     *BeanStore
	Bags      *BagStore
	Equipment *EquipmentStore
	Profiles  *ProfileStore
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:        db,
		Shots:     &ShotStore{db: db},
		Beans:     &BeanStore{db: db},
		Bags:      &BagStore{db: db},
		Equipment: &EquipmentStore{db: db},
		Profiles:  &ProfileStore{db: db},
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS shots (
	id TEXT PRIMARY KEY,
	dose_grams REAL NOT NULL,
	output_grams REAL NOT NULL,
	time_seconds REAL NOT NULL,
	rating INTEGER NOT NULL DEFAULT 0,
	grind_setting TEXT NOT NULL DEFAULT '',
	drink_type TEXT NOT NULL DEFAULT '',
	bean_id TEXT NOT NULL DEFAULT '',
	bag_id TEXT NOT NULL DEFAULT '',
	made_by TEXT NOT NULL DEFAULT '',
	made_for TEXT NOT NULL DEFAULT '',
	machine_id TEXT NOT NULL DEFAULT '',
	grinder_id TEXT NOT NULL DEFAULT '',
	accessory_ids TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	pulled_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shots_pulled_at ON shots(pulled_at);

CREATE TABLE IF NOT EXISTS beans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	roaster TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL DEFAULT '',
	roast_level TEXT NOT NULL DEFAULT '',
	added_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bags (
	id TEXT PRIMARY KEY,
	bean_id TEXT NOT NULL,
	weight_grams REAL NOT NULL DEFAULT 0,
	roast_date TEXT NOT NULL DEFAULT '',
	opened_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	added_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	added_at TIMESTAMP NOT NULL
);
`

type ShotStore struct {
	db *sql.DB
}

const shotColumns = `id, dose_grams, output_grams, time_seconds, rating, grind_setting,
	drink_type, bean_id, bag_id, made_by, made_for, machine_id, grinder_id,
	accessory_ids, notes, pulled_at`

func (s *ShotStore) Create(ctx context.Context, shot domain.Shot) (domain.Shot, error) {
	shot.ID = uuid.NewString()
	if shot.PulledAt.IsZero() {
		shot.PulledAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shots (`+shotColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shot.ID, shot.DoseGrams, shot.OutputGrams, shot.TimeSeconds, shot.Rating,
		shot.GrindSetting, string(shot.DrinkType), shot.BeanID, shot.BagID,
		shot.MadeByID, shot.MadeForID, shot.MachineID, shot.GrinderID,
		strings.Join(shot.AccessoryIDs, ","), shot.Notes, shot.PulledAt,
	)
	if err != nil {
		return domain.Shot{}, fmt.Errorf("inserting shot: %w", err)
	}
	return shot, nil
}

func (s *ShotStore) Update(ctx context.Context, shot domain.Shot) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE shots SET dose_grams = ?, output_grams = ?, time_seconds = ?,
		 rating = ?, grind_setting = ?, drink_type = ?, bean_id = ?, bag_id = ?,
		 made_by = ?, made_for = ?, machine_id = ?, grinder_id = ?,
		 accessory_ids = ?, notes = ? WHERE id = ?`,
		shot.DoseGrams, shot.OutputGrams, shot.TimeSeconds, shot.Rating,
		shot.GrindSetting, string(shot.DrinkType), shot.BeanID, shot.BagID,
		shot.MadeByID, shot.MadeForID, shot.MachineID, shot.GrinderID,
		strings.Join(shot.AccessoryIDs, ","), shot.Notes, shot.ID,
	)
	if err != nil {
		return fmt.Errorf("updating shot: %w", err)
	}
	return nil
}

func (s *ShotStore) MostRecent(ctx context.Context) (*domain.Shot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shotColumns+` FROM shots ORDER BY pulled_at DESC LIMIT 1`)

	shot, err := scanShot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading most recent shot: %w", err)
	}
	return &shot, nil
}

func (s *ShotStore) Find(ctx context.Context, filter domain.ShotFilter) ([]domain.Shot, error) {
	query := `SELECT ` + shotColumns + ` FROM shots WHERE 1=1`
	var args []any

	if filter.BeanID != "" {
		query += ` AND bean_id = ?`
		args = append(args, filter.BeanID)
	}
	if filter.MadeByID != "" {
		query += ` AND made_by = ?`
		args = append(args, filter.MadeByID)
	}
	if filter.MadeForID != "" {
		query += ` AND made_for = ?`
		args = append(args, filter.MadeForID)
	}
	if filter.MinRating >= 0 {
		query += ` AND rating >= ?`
		args = append(args, filter.MinRating)
	}
	if !filter.Since.IsZero() {
		query += ` AND pulled_at >= ?`
		args = append(args, filter.Since)
	}
	query += ` ORDER BY pulled_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying shots: %w", err)
	}
	defer rows.Close()

	var shots []domain.Shot
	for rows.Next() {
		shot, err := scanShot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shot: %w", err)
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

func (s *ShotStore) Count(ctx context.Context, filter domain.ShotFilter) (int, error) {
	query := `SELECT COUNT(*) FROM shots WHERE 1=1`
	var args []any

	if filter.BeanID != "" {
		query += ` AND bean_id = ?`
		args = append(args, filter.BeanID)
	}
	if filter.MinRating >= 0 {
		query += ` AND rating >= ?`
		args = append(args, filter.MinRating)
	}
	if !filter.Since.IsZero() {
		query += ` AND pulled_at >= ?`
		args = append(args, filter.Since)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting shots: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShot(row rowScanner) (domain.Shot, error) {
	var shot domain.Shot
	var drink, accessories string

	err := row.Scan(
		&shot.ID, &shot.DoseGrams, &shot.OutputGrams, &shot.TimeSeconds,
		&shot.Rating, &shot.GrindSetting, &drink, &shot.BeanID, &shot.BagID,
		&shot.MadeByID, &shot.MadeForID, &shot.MachineID, &shot.GrinderID,
		&accessories, &shot.Notes, &shot.PulledAt,
	)
	if err != nil {
		return domain.Shot{}, err
	}

	shot.DrinkType = domain.DrinkType(drink)
	if accessories != "" {
		shot.AccessoryIDs = strings.Split(accessories, ",")
	}
	return shot, nil
}

type BeanStore struct {
	db *sql.DB
}

func (s *BeanStore) Create(ctx context.Context, bean domain.Bean) (domain.Bean, error) {
	bean.ID = uuid.NewString()
	if bean.AddedAt.IsZero() {
		bean.AddedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO beans (id, name, roaster, origin, roast_level, added_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bean.ID, bean.Name, bean.Roaster, bean.Origin, bean.RoastLevel, bean.AddedAt,
	)
	if err != nil {
		return domain.Bean{}, fmt.Errorf("inserting bean: %w", err)
	}
	return bean, nil
}

func (s *BeanStore) List(ctx context.Context) ([]domain.Bean, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, roaster, origin, roast_level, added_at FROM beans ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying beans: %w", err)
	}
	defer rows.Close()

	var beans []domain.Bean
	for rows.Next() {
		var b domain.Bean
		if err := rows.Scan(&b.ID, &b.Name, &b.Roaster, &b.Origin, &b.RoastLevel, &b.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning bean: %w", err)
		}
		beans = append(beans, b)
	}
	return beans, rows.Err()
}

type BagStore struct {
	db *sql.DB
}

func (s *BagStore) Create(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	bag.ID = uuid.NewString()
	if bag.OpenedAt.IsZero() {
		bag.OpenedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bags (id, bean_id, weight_grams, roast_date, opened_at)
		 VALUES (?, ?, ?, ?, ?)`,
		bag.ID, bag.BeanID, bag.WeightGrams, bag.RoastDate, bag.OpenedAt,
	)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("inserting bag: %w", err)
	}
	return bag, nil
}

func (s *BagStore) List(ctx context.Context) ([]domain.Bag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bean_id, weight_grams, roast_date, opened_at FROM bags ORDER BY opened_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying bags: %w", err)
	}
	defer rows.Close()

	var bags []domain.Bag
	for rows.Next() {
		var b domain.Bag
		if err := rows.Scan(&b.ID, &b.BeanID, &b.WeightGrams, &b.RoastDate, &b.OpenedAt); err != nil {
			return nil, fmt.Errorf("scanning bag: %w", err)
		}
		bags = append(bags, b)
	}
	return bags, rows.Err()
}

type EquipmentStore struct {
	db *sql.DB
}

func (s *EquipmentStore) Create(ctx context.Context, eq domain.Equipment) (domain.Equipment, error) {
	eq.ID = uuid.NewString()
	if eq.AddedAt.IsZero() {
		eq.AddedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO equipment (id, name, kind, added_at) VALUES (?, ?, ?, ?)`,
		eq.ID, eq.Name, string(eq.Kind), eq.AddedAt,
	)
	if err != nil {
		return domain.Equipment{}, fmt.Errorf("inserting equipment: %w", err)
	}
	return eq, nil
}

func (s *EquipmentStore) List(ctx context.Context) ([]domain.Equipment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, added_at FROM equipment ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying equipment: %w", err)
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var e domain.Equipment
		var kind string
		if err := rows.Scan(&e.ID, &e.Name, &kind, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning equipment: %w", err)
		}
		e.Kind = domain.EquipmentKind(kind)
		items = append(items, e)
	}
	return items, rows.Err()
}

type ProfileStore struct {
	db *sql.DB
}

func (s *ProfileStore) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	profile.ID = uuid.NewString()
	if profile.AddedAt.IsZero() {
		profile.AddedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, added_at) VALUES (?, ?, ?)`,
		profile.ID, profile.Name, profile.AddedAt,
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("inserting profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, added_at FROM profiles ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
