package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/server/dao"
)

type RevisionsDB struct {
	db *sql.DB
}

func (repo *RevisionsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS revisions (
		id TEXT NOT NULL PRIMARY KEY,
		session_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES sessions(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		text TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *RevisionsDB) Create(ctx context.Context, rev dao.Revision) (dao.Revision, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Revision{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO revisions (id, session_id, text, created) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return dao.Revision{}, wrapDBError(err)
	}
	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(rev.SessionID),
		rev.Text,
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Revision{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *RevisionsDB) scanRows(rows *sql.Rows) ([]dao.Revision, error) {
	var all []dao.Revision

	for rows.Next() {
		var rev dao.Revision
		var id string
		var sessionID string
		var created int64
		err := rows.Scan(
			&id,
			&sessionID,
			&rev.Text,
			&created,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &rev.ID); err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		if err := convertFromDB_UUID(sessionID, &rev.SessionID); err != nil {
			return all, fmt.Errorf("stored session ID %q is invalid: %w", sessionID, err)
		}
		convertFromDB_Time(created, &rev.Created)

		all = append(all, rev)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

// timeRangeClause builds the created-range filter shared by the GetAll*
// queries, returning the SQL fragment and its bind arguments.
func timeRangeClause(notBefore, notAfter *time.Time) (string, []any) {
	var conds []string
	var args []any
	if notBefore != nil {
		conds = append(conds, "created >= ?")
		args = append(args, convertToDB_Time(*notBefore))
	}
	if notAfter != nil {
		conds = append(conds, "created <= ?")
		args = append(args, convertToDB_Time(*notAfter))
	}
	if len(conds) < 1 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *RevisionsDB) GetAll(ctx context.Context, notBefore *time.Time, notAfter *time.Time) ([]dao.Revision, error) {
	clause, args := timeRangeClause(notBefore, notAfter)
	rows, err := repo.db.QueryContext(ctx, `SELECT id, session_id, text, created FROM revisions`+clause+`;`, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *RevisionsDB) GetAllByUser(ctx context.Context, userID uuid.UUID, notBefore *time.Time, notAfter *time.Time) ([]dao.Revision, error) {
	query := `SELECT r.id, r.session_id, r.text, r.created FROM revisions AS r
		INNER JOIN sessions AS s ON r.session_id = s.id
		WHERE s.user_id = ?`
	args := []any{convertToDB_UUID(userID)}

	if notBefore != nil {
		query += ` AND r.created >= ?`
		args = append(args, convertToDB_Time(*notBefore))
	}
	if notAfter != nil {
		query += ` AND r.created <= ?`
		args = append(args, convertToDB_Time(*notAfter))
	}

	rows, err := repo.db.QueryContext(ctx, query+`;`, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *RevisionsDB) GetAllBySession(ctx context.Context, sessionID uuid.UUID) ([]dao.Revision, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, session_id, text, created FROM revisions WHERE session_id=? ORDER BY created;`, convertToDB_UUID(sessionID))
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *RevisionsDB) Update(ctx context.Context, id uuid.UUID, rev dao.Revision) (dao.Revision, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE revisions SET id=?, session_id=?, text=?, created=? WHERE id=?;`,
		convertToDB_UUID(rev.ID),
		convertToDB_UUID(rev.SessionID),
		rev.Text,
		convertToDB_Time(rev.Created),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Revision{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Revision{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Revision{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, rev.ID)
}

func (repo *RevisionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Revision, error) {
	rev := dao.Revision{
		ID: id,
	}
	var sessionID string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT session_id, text, created FROM revisions WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&sessionID,
		&rev.Text,
		&created,
	)

	if err != nil {
		return rev, wrapDBError(err)
	}

	if err := convertFromDB_UUID(sessionID, &rev.SessionID); err != nil {
		return rev, fmt.Errorf("stored session ID %q is invalid: %w", sessionID, err)
	}
	convertFromDB_Time(created, &rev.Created)

	return rev, nil
}

func (repo *RevisionsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Revision, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM revisions WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *RevisionsDB) Close() error {
	return repo.db.Close()
}
