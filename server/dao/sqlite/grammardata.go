package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/server/dao"
)

type GrammarDatasDB struct {
	db *sql.DB
}

func (repo *GrammarDatasDB) init() error {
	// FKs not possible due to separate table files.
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammar_data (
		id TEXT NOT NULL PRIMARY KEY,
		data TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GrammarDatasDB) Create(ctx context.Context, data dao.GrammarData) (dao.GrammarData, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.GrammarData{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO grammar_data (id, data) VALUES (?, ?)`)
	if err != nil {
		return dao.GrammarData{}, wrapDBError(err)
	}
	_, err = stmt.ExecContext(ctx, convertToDB_UUID(newUUID), convertToDB_ByteSlice(data.Data))
	if err != nil {
		return dao.GrammarData{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarDatasDB) GetByID(ctx context.Context, id uuid.UUID) (dao.GrammarData, error) {
	data := dao.GrammarData{
		ID: id,
	}
	var encData string

	row := repo.db.QueryRowContext(ctx, `SELECT data FROM grammar_data WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&encData,
	)

	if err != nil {
		return data, wrapDBError(err)
	}

	if err := convertFromDB_ByteSlice(encData, &data.Data); err != nil {
		return data, fmt.Errorf("stored grammar document for %s is invalid: %w", id.String(), err)
	}

	return data, nil
}

func (repo *GrammarDatasDB) Update(ctx context.Context, id uuid.UUID, data dao.GrammarData) (dao.GrammarData, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE grammar_data SET id=?, data=? WHERE id=?;`,
		convertToDB_UUID(data.ID),
		convertToDB_ByteSlice(data.Data),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.GrammarData{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.GrammarData{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.GrammarData{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, data.ID)
}

func (repo *GrammarDatasDB) Delete(ctx context.Context, id uuid.UUID) (dao.GrammarData, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammar_data WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *GrammarDatasDB) Close() error {
	return repo.db.Close()
}
