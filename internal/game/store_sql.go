package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-games/internal/schema"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutType(ctx context.Context, t GameType) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO game_types (id,name,description)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description`,
		t.ID, t.Name, t.Description)
	return err
}

func (s *SQLStore) ListTypes(ctx context.Context) ([]GameType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,description FROM game_types ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GameType
	for rows.Next() {
		var t GameType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Create(ctx context.Context, g Game) error {
	aides, meta, err := encodeGame(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO games
		(id,subject_id,game_type_id,name,instructions,question,aides_json,metadata_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		g.ID, g.SubjectID, g.GameTypeID, g.Name, g.Instructions, g.Question, aides, meta, g.CreatedAt, g.UpdatedAt)
	return err
}

func (s *SQLStore) Update(ctx context.Context, g Game) error {
	aides, meta, err := encodeGame(g)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE games SET
		subject_id=$1, game_type_id=$2, name=$3, instructions=$4, question=$5,
		aides_json=$6, metadata_json=$7, updated_at=$8
		WHERE id=$9`,
		g.SubjectID, g.GameTypeID, g.Name, g.Instructions, g.Question, aides, meta, g.UpdatedAt, g.ID)
	if err != nil {
		return err
	}
	return affected(res, g.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(res, id)
}

const selectGames = `SELECT g.id, g.subject_id, g.game_type_id, g.name, g.instructions, g.question,
	g.aides_json, g.metadata_json, g.created_at, g.updated_at, COALESCE(t.name, '')
	FROM games g LEFT JOIN game_types t ON t.id = g.game_type_id`

func (s *SQLStore) Get(ctx context.Context, id string) (Game, error) {
	row := s.db.QueryRowContext(ctx, selectGames+` WHERE g.id=$1`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g, err
}

func (s *SQLStore) ListBySubject(ctx context.Context, subjectID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, selectGames+` WHERE g.subject_id=$1 ORDER BY g.created_at, g.id`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanGame re-normalizes stored metadata with the joined type name, so
// rows written before a shape change still come back canonical.
func scanGame(sc scanner) (Game, error) {
	var g Game
	var aides, meta, typeName string
	if err := sc.Scan(&g.ID, &g.SubjectID, &g.GameTypeID, &g.Name, &g.Instructions, &g.Question,
		&aides, &meta, &g.CreatedAt, &g.UpdatedAt, &typeName); err != nil {
		return Game{}, err
	}
	if err := json.Unmarshal([]byte(aides), &g.Aides); err != nil {
		g.Aides = nil
	}
	g.Metadata = schema.Normalize(typeName, []byte(meta))
	return g, nil
}

func encodeGame(g Game) (aides, meta string, err error) {
	if g.Aides == nil {
		g.Aides = []string{}
	}
	a, err := json.Marshal(g.Aides)
	if err != nil {
		return "", "", err
	}
	m := []byte("null")
	if g.Metadata != nil {
		if m, err = json.Marshal(g.Metadata); err != nil {
			return "", "", err
		}
	}
	return string(a), string(m), nil
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
