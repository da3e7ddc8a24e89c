package inmem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/util"
	"github.com/softwarity/tac-editor/server/dao"
)

func NewGrammarsRepository() *InMemoryGrammarsRepository {
	return &InMemoryGrammarsRepository{
		grams:         make(map[uuid.UUID]dao.Grammar),
		byNameIndex:   make(map[string]uuid.UUID),
		byUserIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryGrammarsRepository struct {
	grams         map[uuid.UUID]dao.Grammar
	byNameIndex   map[string]uuid.UUID
	byUserIDIndex map[uuid.UUID][]uuid.UUID
}

func (imgr *InMemoryGrammarsRepository) Close() error {
	return nil
}

func (imgr *InMemoryGrammarsRepository) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	g.ID = newUUID

	// make sure it's not already in the DB
	if _, ok := imgr.byNameIndex[g.Name]; ok {
		return dao.Grammar{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	g.Created = now
	g.Modified = now

	imgr.grams[g.ID] = g
	imgr.byNameIndex[g.Name] = g.ID

	byUser := imgr.byUserIDIndex[g.UserID]
	byUser = append(byUser, g.ID)
	imgr.byUserIDIndex[g.UserID] = byUser

	return g, nil
}

func (imgr *InMemoryGrammarsRepository) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	all := make([]dao.Grammar, len(imgr.grams))

	i := 0
	for k := range imgr.grams {
		all[i] = imgr.grams[k]
		i++
	}

	all = util.SortBy(all, func(l, r dao.Grammar) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imgr *InMemoryGrammarsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Grammar, error) {
	byUser := imgr.byUserIDIndex[userID]

	all := make([]dao.Grammar, len(byUser))
	for i := range byUser {
		all[i] = imgr.grams[byUser[i]]
	}

	all = util.SortBy(all, func(l, r dao.Grammar) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imgr *InMemoryGrammarsRepository) Update(ctx context.Context, id uuid.UUID, g dao.Grammar) (dao.Grammar, error) {
	existing, ok := imgr.grams[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if g.Name != existing.Name {
		// that's okay but we need to check it
		if _, ok := imgr.byNameIndex[g.Name]; ok {
			return dao.Grammar{}, dao.ErrConstraintViolation
		}
	} else if g.ID != id {
		// that's okay but we need to check it
		if _, ok := imgr.grams[g.ID]; ok {
			return dao.Grammar{}, dao.ErrConstraintViolation
		}
	}

	g.Modified = time.Now()

	imgr.grams[g.ID] = g
	imgr.byNameIndex[g.Name] = g.ID
	if g.ID != id {
		delete(imgr.grams, id)

		if existing.UserID == g.UserID {
			byUser := imgr.byUserIDIndex[existing.UserID]
			pos := util.SliceIndexOf(id, byUser)
			if pos < 0 {
				return dao.Grammar{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for user %s to grammar %s", existing.UserID, existing.ID)
			}
			byUser[pos] = g.ID
			imgr.byUserIDIndex[existing.UserID] = byUser
		}
	}
	if g.Name != existing.Name {
		delete(imgr.byNameIndex, existing.Name)
	}

	if g.UserID != existing.UserID {
		byUser := imgr.byUserIDIndex[existing.UserID]
		updated := util.SliceRemove(existing.ID, byUser)
		imgr.byUserIDIndex[existing.UserID] = updated
		if len(updated) < 1 {
			delete(imgr.byUserIDIndex, existing.UserID)
		}

		newByUser := imgr.byUserIDIndex[g.UserID]
		newByUser = append(newByUser, g.ID)
		imgr.byUserIDIndex[g.UserID] = newByUser
	}

	return g, nil
}

func (imgr *InMemoryGrammarsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g, ok := imgr.grams[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return g, nil
}

func (imgr *InMemoryGrammarsRepository) GetByName(ctx context.Context, name string) (dao.Grammar, error) {
	gID, ok := imgr.byNameIndex[name]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return imgr.grams[gID], nil
}

func (imgr *InMemoryGrammarsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g, ok := imgr.grams[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	byUser := imgr.byUserIDIndex[g.UserID]
	updated := util.SliceRemove(g.ID, byUser)
	imgr.byUserIDIndex[g.UserID] = updated
	if len(updated) < 1 {
		delete(imgr.byUserIDIndex, g.UserID)
	}

	delete(imgr.byNameIndex, g.Name)
	delete(imgr.grams, g.ID)

	return g, nil
}
