package workitem

import (
	"errors"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// WorkItemRepository is the persistence contract the lifecycle core depends on.
// UpdateIfVersion is the only mutation primitive: the write is applied
// atomically and only when the stored version still equals expectedVersion,
// with the version incremented in the same write. Handlers never mutate
// records in place.
type WorkItemRepository interface {
	Get(id types.ID) (*domain.WorkItem, error)
	List(query *domain.WorkItemQuery) ([]domain.WorkItem, error)
	Create(item *domain.WorkItem) error
	UpdateIfVersion(id types.ID, expectedVersion int64, mutate func(*domain.WorkItem)) (*domain.WorkItem, error)
}

type GormWorkItemRepository struct {
	dataSource *persistence.DataSourceManager
}

func NewGormWorkItemRepository(ds *persistence.DataSourceManager) *GormWorkItemRepository {
	return &GormWorkItemRepository{dataSource: ds}
}

func (r *GormWorkItemRepository) Get(id types.ID) (*domain.WorkItem, error) {
	var item domain.WorkItem
	db := r.dataSource.GormDB()
	if err := db.Where(&domain.WorkItem{ID: id}).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormWorkItemRepository) List(query *domain.WorkItemQuery) ([]domain.WorkItem, error) {
	items := []domain.WorkItem{}
	db := r.dataSource.GormDB()

	q := db.Model(&domain.WorkItem{})
	if query.CaseID != 0 {
		q = q.Where("case_id = ?", query.CaseID)
	}
	if query.TaskID != "" {
		q = q.Where("task_id = ?", query.TaskID)
	}
	if len(query.States) > 0 {
		q = q.Where("state in (?)", query.States)
	}
	if query.PileID != 0 {
		q = q.Where("pile_id = ?", query.PileID)
	}
	if query.AssignedUser != "" && query.CandidateUser != "" {
		q = q.Where("assigned_user = ? OR candidate_users LIKE ?",
			query.AssignedUser, `%"`+query.CandidateUser+`"%`)
	} else if query.AssignedUser != "" {
		q = q.Where("assigned_user = ?", query.AssignedUser)
	} else if query.CandidateUser != "" {
		q = q.Where("candidate_users LIKE ?", `%"`+query.CandidateUser+`"%`)
	}

	if err := q.Order("enabled_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormWorkItemRepository) Create(item *domain.WorkItem) error {
	return r.dataSource.GormDB().Create(item).Error
}

// UpdateIfVersion loads the record, applies the mutator to the in-memory copy
// and writes every mutable column back guarded by the observed version.
// RowsAffected is the compare-and-swap verdict: zero rows means another writer
// won and the caller observes ErrVersionConflict.
func (r *GormWorkItemRepository) UpdateIfVersion(id types.ID, expectedVersion int64,
	mutate func(*domain.WorkItem)) (*domain.WorkItem, error) {

	var updated domain.WorkItem
	err := r.dataSource.GormDB().Transaction(func(tx *gorm.DB) error {
		var item domain.WorkItem
		if err := tx.Where(&domain.WorkItem{ID: id}).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		mutate(&item)
		item.ID = id
		item.Version = expectedVersion + 1

		ret := tx.Model(&domain.WorkItem{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]interface{}{
				"state":           item.State,
				"launch_mode":     item.LaunchMode,
				"assigned_user":   item.AssignedUser,
				"candidate_users": item.CandidateUsers,
				"candidate_roles": item.CandidateRoles,
				"pile_id":         item.PileID,
				"data":            item.Data,
				"started_at":      item.StartedAt,
				"completed_at":    item.CompletedAt,
				"version":         item.Version,
			})
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrVersionConflict
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
