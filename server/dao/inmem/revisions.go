package inmem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softwarity/tac-editor/internal/util"
	"github.com/softwarity/tac-editor/server/dao"
)

// NewRevisionsRepository creates a new Revisions repo. If seshRepo is not
// provided, GetAllByUser() will always return nil.
func NewRevisionsRepository(seshRepo dao.SessionRepository) *InMemoryRevisionsRepository {
	return &InMemoryRevisionsRepository{
		seshRepo:      seshRepo,
		revs:          make(map[uuid.UUID]dao.Revision),
		bySeshIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryRevisionsRepository struct {
	revs          map[uuid.UUID]dao.Revision
	seshRepo      dao.SessionRepository
	bySeshIDIndex map[uuid.UUID][]uuid.UUID
}

func (imrr *InMemoryRevisionsRepository) Close() error {
	return nil
}

func (imrr *InMemoryRevisionsRepository) Create(ctx context.Context, rev dao.Revision) (dao.Revision, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Revision{}, fmt.Errorf("could not generate ID: %w", err)
	}

	rev.ID = newUUID
	rev.Created = time.Now()

	if imrr.seshRepo != nil {
		_, err := imrr.seshRepo.GetByID(ctx, rev.SessionID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return dao.Revision{}, dao.ErrConstraintViolation
			} else {
				return dao.Revision{}, err
			}
		}
	}

	imrr.revs[rev.ID] = rev

	seshRevs := imrr.bySeshIDIndex[rev.SessionID]
	seshRevs = append(seshRevs, rev.ID)
	imrr.bySeshIDIndex[rev.SessionID] = seshRevs

	return rev, nil
}

func inTimeRange(t time.Time, notBefore, notAfter *time.Time) bool {
	if notBefore != nil && t.Before(*notBefore) {
		return false
	}
	if notAfter != nil && t.After(*notAfter) {
		return false
	}
	return true
}

func (imrr *InMemoryRevisionsRepository) GetAll(ctx context.Context, notBefore *time.Time, notAfter *time.Time) ([]dao.Revision, error) {
	all := make([]dao.Revision, 0, len(imrr.revs))

	for k := range imrr.revs {
		if inTimeRange(imrr.revs[k].Created, notBefore, notAfter) {
			all = append(all, imrr.revs[k])
		}
	}

	all = util.SortBy(all, func(l, r dao.Revision) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imrr *InMemoryRevisionsRepository) GetAllByUser(ctx context.Context, id uuid.UUID, notBefore *time.Time, notAfter *time.Time) ([]dao.Revision, error) {
	if imrr.seshRepo == nil {
		return nil, nil
	}

	userSessions, err := imrr.seshRepo.GetAllByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	allRevisions := []dao.Revision{}
	for _, sesh := range userSessions {
		seshRevisions, err := imrr.GetAllBySession(ctx, sesh.ID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, err
		}
		for _, rev := range seshRevisions {
			if inTimeRange(rev.Created, notBefore, notAfter) {
				allRevisions = append(allRevisions, rev)
			}
		}
	}

	return allRevisions, nil
}

func (imrr *InMemoryRevisionsRepository) GetAllBySession(ctx context.Context, id uuid.UUID) ([]dao.Revision, error) {
	bySesh := imrr.bySeshIDIndex[id]
	if len(bySesh) < 1 {
		return nil, dao.ErrNotFound
	}

	all := make([]dao.Revision, len(bySesh))

	for i := range bySesh {
		all[i] = imrr.revs[bySesh[i]]
	}

	all = util.SortBy(all, func(l, r dao.Revision) bool {
		return l.Created.Before(r.Created)
	})

	return all, nil
}

func (imrr *InMemoryRevisionsRepository) Update(ctx context.Context, id uuid.UUID, rev dao.Revision) (dao.Revision, error) {
	existing, ok := imrr.revs[id]
	if !ok {
		return dao.Revision{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if rev.ID != id {
		// that's okay but we need to check it
		if _, ok := imrr.revs[rev.ID]; ok {
			return dao.Revision{}, dao.ErrConstraintViolation
		}
	}

	imrr.revs[rev.ID] = rev
	if rev.ID != id {
		delete(imrr.revs, id)

		// also update it in the index slices if we are not about to remove it
		if existing.SessionID == rev.SessionID {
			bySesh := imrr.bySeshIDIndex[existing.SessionID]
			pos := util.SliceIndexOf(id, bySesh)
			if pos < 0 {
				return dao.Revision{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for sesh %s to revision %s", existing.SessionID, existing.ID)
			}
			bySesh[pos] = rev.ID
			imrr.bySeshIDIndex[existing.SessionID] = bySesh
		}
	}

	if rev.SessionID != existing.SessionID {
		// if we're modifying the session, we must remove it from old index
		// entry and put it into another.
		bySesh := imrr.bySeshIDIndex[existing.SessionID]
		updated := util.SliceRemove(existing.ID, bySesh)
		imrr.bySeshIDIndex[existing.SessionID] = updated
		if len(updated) < 1 {
			delete(imrr.bySeshIDIndex, existing.SessionID)
		}

		newBySesh := imrr.bySeshIDIndex[rev.SessionID]
		newBySesh = append(newBySesh, rev.ID)
		imrr.bySeshIDIndex[rev.SessionID] = newBySesh
	}

	return rev, nil
}

func (imrr *InMemoryRevisionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Revision, error) {
	rev, ok := imrr.revs[id]
	if !ok {
		return dao.Revision{}, dao.ErrNotFound
	}

	return rev, nil
}

func (imrr *InMemoryRevisionsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Revision, error) {
	rev, ok := imrr.revs[id]
	if !ok {
		return dao.Revision{}, dao.ErrNotFound
	}

	bySesh := imrr.bySeshIDIndex[rev.SessionID]
	updated := util.SliceRemove(rev.ID, bySesh)
	imrr.bySeshIDIndex[rev.SessionID] = updated
	if len(updated) < 1 {
		delete(imrr.bySeshIDIndex, rev.SessionID)
	}

	delete(imrr.revs, rev.ID)

	return rev, nil
}
