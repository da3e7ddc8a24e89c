package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/server/dao"
)

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		version TEXT NOT NULL,
		description TEXT NOT NULL,
		format TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		data_id TEXT NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO grammars (id, user_id, name, category, version, description, format, created, modified, data_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(g.UserID),
		g.Name,
		g.Category,
		g.Version,
		g.Description,
		g.Format,
		convertToDB_Time(now),
		convertToDB_Time(now),
		convertToDB_UUID(g.DataID),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) scanRows(rows *sql.Rows) ([]dao.Grammar, error) {
	var all []dao.Grammar

	for rows.Next() {
		var g dao.Grammar
		var id string
		var userID string
		var created int64
		var modified int64
		var dataID string
		err := rows.Scan(
			&id,
			&userID,
			&g.Name,
			&g.Category,
			&g.Version,
			&g.Description,
			&g.Format,
			&created,
			&modified,
			&dataID,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &g.ID); err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		if err := convertFromDB_UUID(userID, &g.UserID); err != nil {
			return all, fmt.Errorf("stored user ID %q is invalid: %w", userID, err)
		}
		if err := convertFromDB_UUID(dataID, &g.DataID); err != nil {
			return all, fmt.Errorf("stored data ID %q is invalid: %w", dataID, err)
		}
		convertFromDB_Time(created, &g.Created)
		convertFromDB_Time(modified, &g.Modified)

		all = append(all, g)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, category, version, description, format, created, modified, data_id FROM grammars;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *GrammarsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, category, version, description, format, created, modified, data_id FROM grammars WHERE user_id=?;`, convertToDB_UUID(userID))
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *GrammarsDB) Update(ctx context.Context, id uuid.UUID, g dao.Grammar) (dao.Grammar, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE grammars SET id=?, user_id=?, name=?, category=?, version=?, description=?, format=?, modified=?, data_id=? WHERE id=?;`,
		convertToDB_UUID(g.ID),
		convertToDB_UUID(g.UserID),
		g.Name,
		g.Category,
		g.Version,
		g.Description,
		g.Format,
		convertToDB_Time(time.Now()),
		convertToDB_UUID(g.DataID),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, g.ID)
}

func (repo *GrammarsDB) get(ctx context.Context, query string, arg any) (dao.Grammar, error) {
	var g dao.Grammar
	var id string
	var userID string
	var created int64
	var modified int64
	var dataID string

	row := repo.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(
		&id,
		&userID,
		&g.Name,
		&g.Category,
		&g.Version,
		&g.Description,
		&g.Format,
		&created,
		&modified,
		&dataID,
	)

	if err != nil {
		return g, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &g.ID); err != nil {
		return g, fmt.Errorf("stored UUID %q is invalid", id)
	}
	if err := convertFromDB_UUID(userID, &g.UserID); err != nil {
		return g, fmt.Errorf("stored user ID %q is invalid: %w", userID, err)
	}
	if err := convertFromDB_UUID(dataID, &g.DataID); err != nil {
		return g, fmt.Errorf("stored data ID %q is invalid: %w", dataID, err)
	}
	convertFromDB_Time(created, &g.Created)
	convertFromDB_Time(modified, &g.Modified)

	return g, nil
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	return repo.get(ctx, `SELECT id, user_id, name, category, version, description, format, created, modified, data_id FROM grammars WHERE id = ?;`, convertToDB_UUID(id))
}

func (repo *GrammarsDB) GetByName(ctx context.Context, name string) (dao.Grammar, error) {
	return repo.get(ctx, `SELECT id, user_id, name, category, version, description, format, created, modified, data_id FROM grammars WHERE name = ?;`, name)
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *GrammarsDB) Close() error {
	return repo.db.Close()
}
