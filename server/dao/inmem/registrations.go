package inmem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/util"
	"github.com/softwarity/tac-editor/server/dao"
)

func NewRegistrationsRepository() *InMemoryRegistrationsRepository {
	return &InMemoryRegistrationsRepository{
		regs:          make(map[uuid.UUID]dao.Registration),
		byUserIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryRegistrationsRepository struct {
	regs          map[uuid.UUID]dao.Registration
	byUserIDIndex map[uuid.UUID][]uuid.UUID
}

func (imrr *InMemoryRegistrationsRepository) Close() error {
	return nil
}

func (imrr *InMemoryRegistrationsRepository) Create(ctx context.Context, reg dao.Registration) (dao.Registration, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Registration{}, fmt.Errorf("could not generate ID: %w", err)
	}

	reg.ID = newUUID
	reg.Created = time.Now()

	imrr.regs[reg.ID] = reg

	byUser := imrr.byUserIDIndex[reg.UserID]
	byUser = append(byUser, reg.ID)
	imrr.byUserIDIndex[reg.UserID] = byUser

	return reg, nil
}

func (imrr *InMemoryRegistrationsRepository) GetAll(ctx context.Context) ([]dao.Registration, error) {
	all := make([]dao.Registration, len(imrr.regs))

	i := 0
	for k := range imrr.regs {
		all[i] = imrr.regs[k]
		i++
	}

	all = util.SortBy(all, func(l, r dao.Registration) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imrr *InMemoryRegistrationsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Registration, error) {
	byUser := imrr.byUserIDIndex[userID]

	all := make([]dao.Registration, len(byUser))
	for i := range byUser {
		all[i] = imrr.regs[byUser[i]]
	}

	all = util.SortBy(all, func(l, r dao.Registration) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imrr *InMemoryRegistrationsRepository) Update(ctx context.Context, id uuid.UUID, reg dao.Registration) (dao.Registration, error) {
	existing, ok := imrr.regs[id]
	if !ok {
		return dao.Registration{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if reg.ID != id {
		// that's okay but we need to check it
		if _, ok := imrr.regs[reg.ID]; ok {
			return dao.Registration{}, dao.ErrConstraintViolation
		}
	}

	imrr.regs[reg.ID] = reg
	if reg.ID != id {
		delete(imrr.regs, id)

		if existing.UserID == reg.UserID {
			byUser := imrr.byUserIDIndex[existing.UserID]
			pos := util.SliceIndexOf(id, byUser)
			if pos < 0 {
				return dao.Registration{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for user %s to registration %s", existing.UserID, existing.ID)
			}
			byUser[pos] = reg.ID
			imrr.byUserIDIndex[existing.UserID] = byUser
		}
	}

	if reg.UserID != existing.UserID {
		// if we're modifying the user, we must remove it from old index
		// entry and put it into another.
		byUser := imrr.byUserIDIndex[existing.UserID]
		updated := util.SliceRemove(existing.ID, byUser)
		imrr.byUserIDIndex[existing.UserID] = updated
		if len(updated) < 1 {
			delete(imrr.byUserIDIndex, existing.UserID)
		}

		newByUser := imrr.byUserIDIndex[reg.UserID]
		newByUser = append(newByUser, reg.ID)
		imrr.byUserIDIndex[reg.UserID] = newByUser
	}

	return reg, nil
}

func (imrr *InMemoryRegistrationsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Registration, error) {
	reg, ok := imrr.regs[id]
	if !ok {
		return dao.Registration{}, dao.ErrNotFound
	}

	return reg, nil
}

func (imrr *InMemoryRegistrationsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Registration, error) {
	reg, ok := imrr.regs[id]
	if !ok {
		return dao.Registration{}, dao.ErrNotFound
	}

	byUser := imrr.byUserIDIndex[reg.UserID]
	updated := util.SliceRemove(reg.ID, byUser)
	imrr.byUserIDIndex[reg.UserID] = updated
	if len(updated) < 1 {
		delete(imrr.byUserIDIndex, reg.UserID)
	}

	delete(imrr.regs, reg.ID)

	return reg, nil
}
