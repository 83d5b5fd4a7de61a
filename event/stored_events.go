package event

import (
	"workmill/persistence"
)

var (
	EventPersistCreateFunc = eventPersistCreate
)

func eventPersistCreate(record *EventRecord) error {
	return persistence.ActiveDataSourceManager.GormDB().Create(record).Error
}
