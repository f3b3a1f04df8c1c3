package repository

import (
	bookingModel "sim-bleepy/models/booking"

	"gorm.io/gorm"
)

type BookingRepository interface {
	// InTx runs fn inside one transaction; every repo method that accepts a
	// tx must be called with the handle fn receives.
	InTx(fn func(tx *gorm.DB) error) error

	FindByID(id uint) (*bookingModel.Booking, error)
	FindActiveByUserAndEvent(tx *gorm.DB, userID, eventID uint) (*bookingModel.Booking, error)
	CountByStatus(tx *gorm.DB, eventID uint, status bookingModel.BookingStatus) (int64, error)
	Create(tx *gorm.DB, b *bookingModel.Booking) error
	Save(b *bookingModel.Booking) error
	FindOldestWaitlisted(eventID uint) (*bookingModel.Booking, error)
	HardDelete(b *bookingModel.Booking) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) InTx(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *bookingRepository) FindByID(id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := r.db.Preload("Event").Preload("User").
		Where("deleted_at IS NULL").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindActiveByUserAndEvent(tx *gorm.DB, userID, eventID uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := bookingModel.ActiveScope(tx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) CountByStatus(tx *gorm.DB, eventID uint, status bookingModel.BookingStatus) (int64, error) {
	var count int64
	err := tx.Model(&bookingModel.Booking{}).
		Where("event_id = ? AND status = ? AND deleted_at IS NULL", eventID, status).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) Create(tx *gorm.DB, b *bookingModel.Booking) error {
	return tx.Create(b).Error
}

func (r *bookingRepository) Save(b *bookingModel.Booking) error {
	return r.db.Save(b).Error
}

func (r *bookingRepository) FindOldestWaitlisted(eventID uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := r.db.
		Where("event_id = ? AND status = ? AND deleted_at IS NULL", eventID, bookingModel.BookingStatusWaitlist).
		Order("booked_at ASC").
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) HardDelete(b *bookingModel.Booking) error {
	return r.db.Unscoped().Delete(b).Error
}
