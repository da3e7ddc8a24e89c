package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/server/dao"
)

type SessionsDB struct {
	db *sql.DB
}

func (repo *SessionsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		grammar_name TEXT NOT NULL,
		text TEXT NOT NULL,
		state TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, s dao.Session) (dao.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO sessions (id, user_id, grammar_name, text, state, created) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(s.UserID),
		s.GrammarName,
		s.Text,
		convertToDB_TrackerStatePtr(s.State),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *SessionsDB) scanRows(rows *sql.Rows) ([]dao.Session, error) {
	var all []dao.Session

	for rows.Next() {
		var s dao.Session
		var id string
		var userID string
		var created int64
		var encState string
		err := rows.Scan(
			&id,
			&userID,
			&s.GrammarName,
			&s.Text,
			&encState,
			&created,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &s.ID); err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		if err := convertFromDB_UUID(userID, &s.UserID); err != nil {
			return all, fmt.Errorf("stored user ID %q is invalid: %w", userID, err)
		}
		if err := convertFromDB_TrackerStatePtr(encState, &s.State); err != nil {
			return all, fmt.Errorf("stored tracker state for %s is invalid: %w", id, err)
		}
		convertFromDB_Time(created, &s.Created)

		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *SessionsDB) GetAll(ctx context.Context) ([]dao.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, grammar_name, text, state, created FROM sessions;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *SessionsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, grammar_name, text, state, created FROM sessions WHERE user_id=?;`, convertToDB_UUID(userID))
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *SessionsDB) GetAllByGrammar(ctx context.Context, grammarName string) ([]dao.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, grammar_name, text, state, created FROM sessions WHERE grammar_name=?;`, grammarName)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *SessionsDB) Update(ctx context.Context, id uuid.UUID, s dao.Session) (dao.Session, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE sessions SET id=?, user_id=?, grammar_name=?, text=?, state=?, created=? WHERE id=?;`,
		convertToDB_UUID(s.ID),
		convertToDB_UUID(s.UserID),
		s.GrammarName,
		s.Text,
		convertToDB_TrackerStatePtr(s.State),
		convertToDB_Time(s.Created),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Session{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, s.ID)
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	s := dao.Session{
		ID: id,
	}
	var userID string
	var created int64
	var encState string

	row := repo.db.QueryRowContext(ctx, `SELECT user_id, grammar_name, text, state, created FROM sessions WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&userID,
		&s.GrammarName,
		&s.Text,
		&encState,
		&created,
	)

	if err != nil {
		return s, wrapDBError(err)
	}

	if err := convertFromDB_UUID(userID, &s.UserID); err != nil {
		return s, fmt.Errorf("stored user ID %q is invalid: %w", userID, err)
	}
	if err := convertFromDB_TrackerStatePtr(encState, &s.State); err != nil {
		return s, fmt.Errorf("stored tracker state for %s is invalid: %w", s.ID.String(), err)
	}
	convertFromDB_Time(created, &s.Created)

	return s, nil
}

func (repo *SessionsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *SessionsDB) Close() error {
	return repo.db.Close()
}
