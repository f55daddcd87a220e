// Package persistence provides SQLite-backed storage for faction and fleet
// state. Structured sub-objects (resources, territory, rosters, missions)
// round-trip through JSON side-columns.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kvern/starfall/internal/engine"
	"github.com/kvern/starfall/internal/faction"
	"github.com/kvern/starfall/internal/fleet"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS factions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		home_base TEXT,
		strategy INTEGER NOT NULL,
		max_fleets INTEGER NOT NULL,
		aggressiveness REAL NOT NULL,
		economic_focus REAL NOT NULL,
		expansion_threshold REAL NOT NULL,
		resources_json TEXT NOT NULL,
		territory_json TEXT NOT NULL,
		relations_json TEXT NOT NULL,
		reputation_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fleets (
		id TEXT PRIMARY KEY,
		faction_id TEXT NOT NULL,
		status INTEGER NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		dest_x REAL NOT NULL,
		dest_y REAL NOT NULL,
		formation INTEGER NOT NULL,
		morale REAL NOT NULL,
		supplies REAL NOT NULL,
		fuel REAL NOT NULL,
		alertness REAL NOT NULL,
		engagement_range REAL NOT NULL,
		detection_range REAL NOT NULL,
		target_player_id TEXT,
		mission_json TEXT NOT NULL,
		ships_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		faction_id TEXT,
		target_id TEXT,
		player_id TEXT,
		sector_id TEXT,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fleets_faction ON fleets(faction_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveFactions writes all factions and their fleets (full replace).
func (db *DB) SaveFactions(factions []*faction.Faction) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM fleets"); err != nil {
		return err
	}

	for _, f := range factions {
		resJSON, _ := json.Marshal(f.Resources)
		terrJSON, _ := json.Marshal(f.TerritoryIDs())
		relJSON, _ := json.Marshal(f.Relations)
		repJSON, _ := json.Marshal(f.Reputation)

		_, err := tx.Exec(`INSERT INTO factions
			(id, name, type, home_base, strategy, max_fleets, aggressiveness,
			 economic_focus, expansion_threshold,
			 resources_json, territory_json, relations_json, reputation_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Type.String(), f.HomeBase, f.Strategy,
			f.MaxFleets, f.Aggressiveness, f.EconomicFocus, f.ExpansionThreshold,
			string(resJSON), string(terrJSON), string(relJSON), string(repJSON),
		)
		if err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}

		for _, fl := range f.Fleets {
			missionJSON, _ := json.Marshal(fl.Mission)
			shipsJSON, _ := json.Marshal(fl.Ships)

			_, err := tx.Exec(`INSERT INTO fleets
				(id, faction_id, status, pos_x, pos_y, dest_x, dest_y, formation,
				 morale, supplies, fuel, alertness, engagement_range,
				 detection_range, target_player_id, mission_json, ships_json)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				fl.ID, fl.FactionID, fl.Status,
				fl.Position.X, fl.Position.Y, fl.Destination.X, fl.Destination.Y,
				fl.Formation, fl.Morale, fl.Supplies, fl.Fuel, fl.Alertness,
				fl.EngagementRange, fl.DetectionRange, fl.TargetPlayerID,
				string(missionJSON), string(shipsJSON),
			)
			if err != nil {
				return fmt.Errorf("insert fleet %s: %w", fl.ID, err)
			}
		}
	}

	return tx.Commit()
}

type factionRow struct {
	ID                 string  `db:"id"`
	Name               string  `db:"name"`
	Type               string  `db:"type"`
	HomeBase           string  `db:"home_base"`
	Strategy           uint8   `db:"strategy"`
	MaxFleets          int     `db:"max_fleets"`
	Aggressiveness     float64 `db:"aggressiveness"`
	EconomicFocus      float64 `db:"economic_focus"`
	ExpansionThreshold float64 `db:"expansion_threshold"`
	ResourcesJSON      string  `db:"resources_json"`
	TerritoryJSON      string  `db:"territory_json"`
	RelationsJSON      string  `db:"relations_json"`
	ReputationJSON     string  `db:"reputation_json"`
}

type fleetRow struct {
	ID              string  `db:"id"`
	FactionID       string  `db:"faction_id"`
	Status          uint8   `db:"status"`
	PosX            float64 `db:"pos_x"`
	PosY            float64 `db:"pos_y"`
	DestX           float64 `db:"dest_x"`
	DestY           float64 `db:"dest_y"`
	Formation       uint8   `db:"formation"`
	Morale          float64 `db:"morale"`
	Supplies        float64 `db:"supplies"`
	Fuel            float64 `db:"fuel"`
	Alertness       float64 `db:"alertness"`
	EngagementRange float64 `db:"engagement_range"`
	DetectionRange  float64 `db:"detection_range"`
	TargetPlayerID  string  `db:"target_player_id"`
	MissionJSON     string  `db:"mission_json"`
	ShipsJSON       string  `db:"ships_json"`
}

// LoadFactions restores all factions with their fleets attached. Returns an
// empty slice when nothing is persisted.
func (db *DB) LoadFactions() ([]*faction.Faction, error) {
	var rows []factionRow
	if err := db.conn.Select(&rows, "SELECT * FROM factions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select factions: %w", err)
	}

	var fleetRows []fleetRow
	if err := db.conn.Select(&fleetRows, "SELECT * FROM fleets ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select fleets: %w", err)
	}

	fleetsByFaction := make(map[string][]*fleet.Fleet)
	for _, fr := range fleetRows {
		fl, err := fleetFromRow(fr)
		if err != nil {
			return nil, fmt.Errorf("decode fleet %s: %w", fr.ID, err)
		}
		fleetsByFaction[fr.FactionID] = append(fleetsByFaction[fr.FactionID], fl)
	}

	out := make([]*faction.Faction, 0, len(rows))
	for _, r := range rows {
		f, err := factionFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("decode faction %s: %w", r.ID, err)
		}
		f.Fleets = fleetsByFaction[r.ID]
		out = append(out, f)
	}
	return out, nil
}

func factionFromRow(r factionRow) (*faction.Faction, error) {
	f := &faction.Faction{
		ID:                 r.ID,
		Name:               r.Name,
		Type:               faction.ParseType(r.Type),
		HomeBase:           r.HomeBase,
		Strategy:           faction.Strategy(r.Strategy),
		MaxFleets:          r.MaxFleets,
		Aggressiveness:     r.Aggressiveness,
		EconomicFocus:      r.EconomicFocus,
		ExpansionThreshold: r.ExpansionThreshold,
		Territory:          map[string]struct{}{},
	}
	if err := json.Unmarshal([]byte(r.ResourcesJSON), &f.Resources); err != nil {
		return nil, err
	}
	var territory []string
	if err := json.Unmarshal([]byte(r.TerritoryJSON), &territory); err != nil {
		return nil, err
	}
	for _, id := range territory {
		f.Territory[id] = struct{}{}
	}
	if err := json.Unmarshal([]byte(r.RelationsJSON), &f.Relations); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.ReputationJSON), &f.Reputation); err != nil {
		return nil, err
	}
	return f, nil
}

func fleetFromRow(r fleetRow) (*fleet.Fleet, error) {
	fl := &fleet.Fleet{
		ID:              r.ID,
		FactionID:       r.FactionID,
		Status:          fleet.Status(r.Status),
		Formation:       fleet.Formation(r.Formation),
		Morale:          r.Morale,
		Supplies:        r.Supplies,
		Fuel:            r.Fuel,
		Alertness:       r.Alertness,
		EngagementRange: r.EngagementRange,
		DetectionRange:  r.DetectionRange,
		TargetPlayerID:  r.TargetPlayerID,
	}
	fl.Position.X, fl.Position.Y = r.PosX, r.PosY
	fl.Destination.X, fl.Destination.Y = r.DestX, r.DestY
	if err := json.Unmarshal([]byte(r.MissionJSON), &fl.Mission); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.ShipsJSON), &fl.Ships); err != nil {
		return nil, err
	}
	return fl, nil
}

// SaveEvents replaces the persisted pending-event set.
func (db *DB) SaveEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, e := range events {
		_, err := tx.Exec(`INSERT INTO events
			(id, type, faction_id, target_id, player_id, sector_id, message,
			 created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Type), e.FactionID, e.TargetID, e.PlayerID,
			e.SectorID, e.Message, e.CreatedAt, e.ExpiresAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetMeta stores a key-value pair in world metadata.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return empty without
// error.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
