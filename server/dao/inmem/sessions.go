package inmem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/util"
	"github.com/softwarity/tac-editor/server/dao"
)

func NewSessionsRepository() *InMemorySessionsRepository {
	return &InMemorySessionsRepository{
		seshes:         make(map[uuid.UUID]dao.Session),
		byUserIDIndex:  make(map[uuid.UUID][]uuid.UUID),
		byGrammarIndex: make(map[string][]uuid.UUID),
	}
}

type InMemorySessionsRepository struct {
	seshes         map[uuid.UUID]dao.Session
	byUserIDIndex  map[uuid.UUID][]uuid.UUID
	byGrammarIndex map[string][]uuid.UUID
}

func (imsr *InMemorySessionsRepository) Close() error {
	return nil
}

func (imsr *InMemorySessionsRepository) Create(ctx context.Context, sesh dao.Session) (dao.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	sesh.ID = newUUID
	sesh.Created = time.Now()

	imsr.seshes[sesh.ID] = sesh

	byUser := imsr.byUserIDIndex[sesh.UserID]
	byUser = append(byUser, sesh.ID)
	imsr.byUserIDIndex[sesh.UserID] = byUser

	byGram := imsr.byGrammarIndex[sesh.GrammarName]
	byGram = append(byGram, sesh.ID)
	imsr.byGrammarIndex[sesh.GrammarName] = byGram

	return sesh, nil
}

func (imsr *InMemorySessionsRepository) GetAll(ctx context.Context) ([]dao.Session, error) {
	all := make([]dao.Session, len(imsr.seshes))

	i := 0
	for k := range imsr.seshes {
		all[i] = imsr.seshes[k]
		i++
	}

	all = util.SortBy(all, func(l, r dao.Session) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imsr *InMemorySessionsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Session, error) {
	byUser := imsr.byUserIDIndex[userID]

	all := make([]dao.Session, len(byUser))
	for i := range byUser {
		all[i] = imsr.seshes[byUser[i]]
	}

	all = util.SortBy(all, func(l, r dao.Session) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imsr *InMemorySessionsRepository) GetAllByGrammar(ctx context.Context, grammarName string) ([]dao.Session, error) {
	byGram := imsr.byGrammarIndex[grammarName]

	all := make([]dao.Session, len(byGram))
	for i := range byGram {
		all[i] = imsr.seshes[byGram[i]]
	}

	all = util.SortBy(all, func(l, r dao.Session) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imsr *InMemorySessionsRepository) Update(ctx context.Context, id uuid.UUID, sesh dao.Session) (dao.Session, error) {
	existing, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if sesh.ID != id {
		// that's okay but we need to check it
		if _, ok := imsr.seshes[sesh.ID]; ok {
			return dao.Session{}, dao.ErrConstraintViolation
		}
	}

	imsr.seshes[sesh.ID] = sesh
	if sesh.ID != id {
		delete(imsr.seshes, id)

		if existing.UserID == sesh.UserID {
			byUser := imsr.byUserIDIndex[existing.UserID]
			pos := util.SliceIndexOf(id, byUser)
			if pos < 0 {
				return dao.Session{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for user %s to session %s", existing.UserID, existing.ID)
			}
			byUser[pos] = sesh.ID
			imsr.byUserIDIndex[existing.UserID] = byUser
		}
		if existing.GrammarName == sesh.GrammarName {
			byGram := imsr.byGrammarIndex[existing.GrammarName]
			pos := util.SliceIndexOf(id, byGram)
			if pos < 0 {
				return dao.Session{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for grammar %s to session %s", existing.GrammarName, existing.ID)
			}
			byGram[pos] = sesh.ID
			imsr.byGrammarIndex[existing.GrammarName] = byGram
		}
	}

	if sesh.UserID != existing.UserID {
		byUser := imsr.byUserIDIndex[existing.UserID]
		updated := util.SliceRemove(existing.ID, byUser)
		imsr.byUserIDIndex[existing.UserID] = updated
		if len(updated) < 1 {
			delete(imsr.byUserIDIndex, existing.UserID)
		}

		newByUser := imsr.byUserIDIndex[sesh.UserID]
		newByUser = append(newByUser, sesh.ID)
		imsr.byUserIDIndex[sesh.UserID] = newByUser
	}

	if sesh.GrammarName != existing.GrammarName {
		byGram := imsr.byGrammarIndex[existing.GrammarName]
		updated := util.SliceRemove(existing.ID, byGram)
		imsr.byGrammarIndex[existing.GrammarName] = updated
		if len(updated) < 1 {
			delete(imsr.byGrammarIndex, existing.GrammarName)
		}

		newByGram := imsr.byGrammarIndex[sesh.GrammarName]
		newByGram = append(newByGram, sesh.ID)
		imsr.byGrammarIndex[sesh.GrammarName] = newByGram
	}

	return sesh, nil
}

func (imsr *InMemorySessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	sesh, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	return sesh, nil
}

func (imsr *InMemorySessionsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	sesh, ok := imsr.seshes[id]
	if !ok {
		return dao.Session{}, dao.ErrNotFound
	}

	byUser := imsr.byUserIDIndex[sesh.UserID]
	updatedUser := util.SliceRemove(sesh.ID, byUser)
	imsr.byUserIDIndex[sesh.UserID] = updatedUser
	if len(updatedUser) < 1 {
		delete(imsr.byUserIDIndex, sesh.UserID)
	}

	byGram := imsr.byGrammarIndex[sesh.GrammarName]
	updatedGram := util.SliceRemove(sesh.ID, byGram)
	imsr.byGrammarIndex[sesh.GrammarName] = updatedGram
	if len(updatedGram) < 1 {
		delete(imsr.byGrammarIndex, sesh.GrammarName)
	}

	delete(imsr.seshes, sesh.ID)

	return sesh, nil
}
