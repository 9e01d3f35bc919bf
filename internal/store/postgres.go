package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PostgresStore keeps the same document semantics as the Mongo backend:
// each record lives as its full wire document in a JSONB column, with the
// owner name and date extracted into plain columns for filtering. Identity
// is generated by the database (gen_random_uuid) and surfaced as text.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) InsertNotation(ctx context.Context, notation Notation) (Notation, error) {
	id, err := s.insert(ctx, "notations", notation.Name, notation.Date, notation)
	if err != nil {
		return Notation{}, fmt.Errorf("insert notation: %w", err)
	}
	notation.ID = id
	return notation, nil
}

func (s *PostgresStore) FindNotationByNameDate(ctx context.Context, name, date string) (*Notation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id::text, doc FROM notations WHERE name=$1 AND date=$2 LIMIT 1`, name, date)
	var notation Notation
	err := scanDocument(row, &notation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find notation: %w", err)
	}
	return &notation, nil
}

func (s *PostgresStore) ListNotations(ctx context.Context, query ListQuery) ([]Notation, error) {
	rows, err := s.list(ctx, "notations", query)
	if err != nil {
		return nil, fmt.Errorf("list notations: %w", err)
	}
	defer rows.Close()

	out := make([]Notation, 0)
	for rows.Next() {
		var notation Notation
		if err := scanDocument(rows, &notation); err != nil {
			return nil, fmt.Errorf("decode notation: %w", err)
		}
		out = append(out, notation)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertInput(ctx context.Context, input Input) (Input, error) {
	id, err := s.insert(ctx, "inputs", input.Name, input.Date, input)
	if err != nil {
		return Input{}, fmt.Errorf("insert input: %w", err)
	}
	input.ID = id
	return input, nil
}

func (s *PostgresStore) ListInputs(ctx context.Context, query ListQuery) ([]Input, error) {
	rows, err := s.list(ctx, "inputs", query)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	defer rows.Close()

	out := make([]Input, 0)
	for rows.Next() {
		var input Input
		if err := scanDocument(rows, &input); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		out = append(out, input)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestInput(ctx context.Context, name string) (Input, error) {
	var input Input
	err := s.latest(ctx, "inputs", name, &input)
	if err != nil {
		return Input{}, err
	}
	return input, nil
}

func (s *PostgresStore) InsertAIOutput(ctx context.Context, output AIOutput) (AIOutput, error) {
	id, err := s.insert(ctx, "ai_outputs", output.Name, output.Date, output)
	if err != nil {
		return AIOutput{}, fmt.Errorf("insert ai output: %w", err)
	}
	output.ID = id
	return output, nil
}

func (s *PostgresStore) ListAIOutputs(ctx context.Context, query ListQuery) ([]AIOutput, error) {
	rows, err := s.list(ctx, "ai_outputs", query)
	if err != nil {
		return nil, fmt.Errorf("list ai outputs: %w", err)
	}
	defer rows.Close()

	out := make([]AIOutput, 0)
	for rows.Next() {
		var output AIOutput
		if err := scanDocument(rows, &output); err != nil {
			return nil, fmt.Errorf("decode ai output: %w", err)
		}
		out = append(out, output)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestAIOutput(ctx context.Context, name string) (AIOutput, error) {
	var output AIOutput
	err := s.latest(ctx, "ai_outputs", name, &output)
	if err != nil {
		return AIOutput{}, err
	}
	return output, nil
}

func (s *PostgresStore) insert(ctx context.Context, table, name, date string, document any) (string, error) {
	doc, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	var id string
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, date, doc) VALUES ($1, $2, $3) RETURNING id::text`, table),
		name, date, doc).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) list(ctx context.Context, table string, query ListQuery) (*sql.Rows, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT id::text, doc FROM %s WHERE name=$1`, table)
	args := []any{query.Name}
	if query.StartDate != "" {
		args = append(args, query.StartDate)
		fmt.Fprintf(&sb, ` AND date >= $%d`, len(args))
	}
	if query.EndDate != "" {
		args = append(args, query.EndDate)
		fmt.Fprintf(&sb, ` AND date <= $%d`, len(args))
	}
	direction := "DESC"
	if query.SortAsc {
		direction = "ASC"
	}
	fmt.Fprintf(&sb, ` ORDER BY date %s`, direction)
	if query.Limit > 0 {
		args = append(args, query.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return s.db.QueryContext(ctx, sb.String(), args...)
}

func (s *PostgresStore) latest(ctx context.Context, table, name string, target documentModel) error {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id::text, doc FROM %s WHERE name=$1 ORDER BY date DESC LIMIT 1`, table), name)
	err := scanDocument(row, target)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("latest from %s: %w", table, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// documentModel is satisfied by the three record types; setID writes the
// database-assigned identity back onto the decoded document.
type documentModel interface {
	setID(id string)
}

func (n *Notation) setID(id string) { n.ID = id }
func (i *Input) setID(id string)    { i.ID = id }
func (o *AIOutput) setID(id string) { o.ID = id }

func scanDocument(row rowScanner, target documentModel) error {
	var id string
	var doc []byte
	if err := row.Scan(&id, &doc); err != nil {
		return err
	}
	if err := json.Unmarshal(doc, target); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	target.setID(id)
	return nil
}
