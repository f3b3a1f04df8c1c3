package repository

import (
	eventModel "sim-bleepy/models/event"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	FindByID(id uint) (*eventModel.Event, error)
	// FindByIDForUpdate locks the event row for the duration of tx,
	// serializing concurrent booking attempts against the same event.
	FindByIDForUpdate(tx *gorm.DB, id uint) (*eventModel.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(id uint) (*eventModel.Event, error) {
	var ev eventModel.Event
	if err := r.db.Where("deleted_at IS NULL").First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *eventRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*eventModel.Event, error) {
	var ev eventModel.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("deleted_at IS NULL").
		First(&ev, id).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
