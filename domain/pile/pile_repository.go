package pile

import (
	"errors"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type GormPileRepository struct {
	dataSource *persistence.DataSourceManager
}

func NewGormPileRepository(ds *persistence.DataSourceManager) *GormPileRepository {
	return &GormPileRepository{dataSource: ds}
}

func (r *GormPileRepository) Create(pile *domain.Pile) error {
	return r.dataSource.GormDB().Create(pile).Error
}

func (r *GormPileRepository) Get(id types.ID) (*domain.Pile, error) {
	var pile domain.Pile
	if err := r.dataSource.GormDB().Where(&domain.Pile{ID: id}).First(&pile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &pile, nil
}

func (r *GormPileRepository) UpdateMembers(id types.ID, members domain.Roster) (*domain.Pile, error) {
	var updated domain.Pile
	err := r.dataSource.GormDB().Transaction(func(tx *gorm.DB) error {
		var pile domain.Pile
		if err := tx.Where(&domain.Pile{ID: id}).First(&pile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		ret := tx.Model(&domain.Pile{}).Where("id = ?", id).
			Update(map[string]interface{}{"members": members})
		if ret.Error != nil {
			return ret.Error
		}
		pile.Members = members
		updated = pile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
