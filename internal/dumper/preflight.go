package dumper

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/model"
	_ "github.com/go-sql-driver/mysql"
)

// EngineClass is the preflight's classification of a table's storage engine.
type EngineClass string

const (
	EngineTransactional    EngineClass = "transactional"
	EngineNonTransactional EngineClass = "non_transactional"
)

var nonTransactionalEngines = map[string]struct{}{
	"MYISAM":    {},
	"MEMORY":    {},
	"CSV":       {},
	"ARCHIVE":   {},
	"FEDERATED": {},
	"MERGE":     {},
	"BLACKHOLE": {},
}

// TableEngine is one row of the preflight's engine survey.
type TableEngine struct {
	Name  string
	Class EngineClass
}

// ConnectionTarget is the subset of a DatabaseConnection the preflight needs
// to dial the target server directly — distinct from the gateway's own
// SQLite-backed store.
type ConnectionTarget struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

func dsn(t ConnectionTarget, database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=5s", t.Username, t.Password, t.Host, t.Port, database)
}

// TestConnection dials the target and runs SELECT 1, the connection-test
// verdict the UI surfaces for DatabaseConnection.
func TestConnection(ctx context.Context, t ConnectionTarget) error {
	db, err := sql.Open("mysql", dsn(t, t.Database))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrConnectivityFailure, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrConnectivityFailure, err)
	}
	return nil
}

// AnalyzeTableEngines queries information_schema.TABLES for every table in
// database and classifies each by storage engine. An engine that is
// null/empty is treated as transactional, with a warning.
func AnalyzeTableEngines(ctx context.Context, t ConnectionTarget, database string) ([]TableEngine, error) {
	db, err := sql.Open("mysql", dsn(t, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConnectivityFailure, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx,
		`SELECT TABLE_NAME, ENGINE FROM information_schema.TABLES WHERE TABLE_SCHEMA = ?`, database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
	}
	defer rows.Close()

	var out []TableEngine
	for rows.Next() {
		var name string
		var engine sql.NullString
		if err := rows.Scan(&name, &engine); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
		}

		engineName := strings.ToUpper(strings.TrimSpace(engine.String))
		class := EngineTransactional
		switch {
		case engineName == "":
			logging.Warn(logging.Event{
				Category:   logging.CategoryJob,
				EntityType: "table",
				EntityID:   name,
				Message:    "table has no reported storage engine, treating as transactional",
			})
		case engineName == "INNODB":
			// already transactional
		default:
			if _, ok := nonTransactionalEngines[engineName]; ok {
				class = EngineNonTransactional
			}
		}

		out = append(out, TableEngine{Name: name, Class: class})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: database %q has no tables", model.ErrPreflightFailure, database)
	}

	return out, nil
}

// CanCreateDatabase checks the connection's user for CREATE privilege,
// the enumerated preflight query the restore orchestration runs before a
// create-new restore. SHOW GRANTS commonly returns one row per grant/role
// (a bare GRANT USAGE row alongside the actual privilege row), so every row
// is inspected rather than just the first.
func CanCreateDatabase(ctx context.Context, t ConnectionTarget) (bool, error) {
	db, err := sql.Open("mysql", dsn(t, ""))
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrConnectivityFailure, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SHOW GRANTS FOR CURRENT_USER()`)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
	}
	defer rows.Close()

	canCreate := false
	for rows.Next() {
		var grant string
		if err := rows.Scan(&grant); err != nil {
			return false, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
		}
		upper := strings.ToUpper(grant)
		if strings.Contains(upper, "ALL PRIVILEGES") || strings.Contains(upper, "CREATE") {
			canCreate = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrPreflightFailure, err)
	}

	return canCreate, nil
}

// NonTransactionalEngineList returns the dumper's --ignore-engines argument
// value: a comma-joined list of every excluded engine name, in a stable
// order.
func NonTransactionalEngineList() string {
	return "MyISAM,MEMORY,CSV,ARCHIVE,FEDERATED,MERGE,BLACKHOLE"
}
