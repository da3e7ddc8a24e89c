package inmem

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/server/dao"
)

func NewGrammarDatasRepository() *InMemoryGrammarDatasRepository {
	return &InMemoryGrammarDatasRepository{
		datas: make(map[uuid.UUID]dao.GrammarData),
	}
}

type InMemoryGrammarDatasRepository struct {
	datas map[uuid.UUID]dao.GrammarData
}

func (imgd *InMemoryGrammarDatasRepository) Close() error {
	return nil
}

func (imgd *InMemoryGrammarDatasRepository) Create(ctx context.Context, data dao.GrammarData) (dao.GrammarData, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.GrammarData{}, fmt.Errorf("could not generate ID: %w", err)
	}

	data.ID = newUUID

	stored := dao.GrammarData{
		ID:   data.ID,
		Data: make([]byte, len(data.Data)),
	}
	copy(stored.Data, data.Data)

	imgd.datas[stored.ID] = stored

	return stored, nil
}

func (imgd *InMemoryGrammarDatasRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.GrammarData, error) {
	data, ok := imgd.datas[id]
	if !ok {
		return dao.GrammarData{}, dao.ErrNotFound
	}

	return data, nil
}

func (imgd *InMemoryGrammarDatasRepository) Update(ctx context.Context, id uuid.UUID, data dao.GrammarData) (dao.GrammarData, error) {
	if _, ok := imgd.datas[id]; !ok {
		return dao.GrammarData{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	if data.ID != id {
		if _, ok := imgd.datas[data.ID]; ok {
			return dao.GrammarData{}, dao.ErrConstraintViolation
		}
	}

	stored := dao.GrammarData{
		ID:   data.ID,
		Data: make([]byte, len(data.Data)),
	}
	copy(stored.Data, data.Data)

	imgd.datas[stored.ID] = stored
	if data.ID != id {
		delete(imgd.datas, id)
	}

	return stored, nil
}

func (imgd *InMemoryGrammarDatasRepository) Delete(ctx context.Context, id uuid.UUID) (dao.GrammarData, error) {
	data, ok := imgd.datas[id]
	if !ok {
		return dao.GrammarData{}, dao.ErrNotFound
	}

	delete(imgd.datas, id)

	return data, nil
}
