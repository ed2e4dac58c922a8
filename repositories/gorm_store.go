package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Store backed by MySQL or Postgres through gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// day renders a civil date the way both MySQL and Postgres compare against DATE columns.
func day(t time.Time) string {
	return models.FormatDate(models.CivilDate(t))
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ---------------- rooms ----------------

func (s *GormStore) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, "room")
	}
	return &room, nil
}

func (s *GormStore) LockRoom(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := s.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, translate(err, "room")
	}
	return &room, nil
}

func (s *GormStore) RoomNumberExists(ctx context.Context, number string, excludeID uint) (bool, error) {
	var count int64
	q := s.db(ctx).Model(&models.Room{}).Where("room_number = ?", number)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err, "room")
	}
	return count > 0, nil
}

func (s *GormStore) SaveRoom(ctx context.Context, room *models.Room) error {
	if room.ID == 0 {
		return translate(s.db(ctx).Create(room).Error, "room")
	}
	return translate(s.db(ctx).Save(room).Error, "room")
}

func (s *GormStore) DeleteRoom(ctx context.Context, id uint) error {
	res := s.db(ctx).Delete(&models.Room{}, id)
	if res.Error != nil {
		return translate(res.Error, "room")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "room")
	}
	return nil
}

func (s *GormStore) ListRooms(ctx context.Context, filter RoomFilter) ([]models.Room, error) {
	var rooms []models.Room
	q := s.db(ctx).Order("room_number ASC")
	if filter.Type != "" {
		q = q.Where("room_type = ?", filter.Type)
	}
	if filter.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, translate(err, "rooms")
	}
	return rooms, nil
}

func (s *GormStore) ListRoomsByIDs(ctx context.Context, ids []uint) ([]models.Room, error) {
	var rooms []models.Room
	if len(ids) == 0 {
		return rooms, nil
	}
	if err := s.db(ctx).Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		return nil, translate(err, "rooms")
	}
	return rooms, nil
}

// ---------------- guests ----------------

func (s *GormStore) FindGuestByDocument(ctx context.Context, documentNumber string) (*models.Guest, error) {
	var guest models.Guest
	err := s.db(ctx).Where("document_number = ?", documentNumber).First(&guest).Error
	if err != nil {
		return nil, translate(err, "guest")
	}
	return &guest, nil
}

func (s *GormStore) SaveGuest(ctx context.Context, guest *models.Guest) error {
	if guest.ID == 0 {
		return translate(s.db(ctx).Create(guest).Error, "guest")
	}
	return translate(s.db(ctx).Save(guest).Error, "guest")
}

func (s *GormStore) ListGuestsByIDs(ctx context.Context, ids []uint) ([]models.Guest, error) {
	var guests []models.Guest
	if len(ids) == 0 {
		return guests, nil
	}
	if err := s.db(ctx).Where("id IN ?", ids).Find(&guests).Error; err != nil {
		return nil, translate(err, "guests")
	}
	return guests, nil
}

// ---------------- reservations ----------------

func (s *GormStore) SaveReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID == 0 {
		return translate(s.db(ctx).Create(r).Error, "reservation")
	}
	return translate(s.db(ctx).Save(r).Error, "reservation")
}

func (s *GormStore) FindReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err, "reservation")
	}
	return &r, nil
}

func (s *GormStore) LockReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&r, id).Error
	if err != nil {
		return nil, translate(err, "reservation")
	}
	return &r, nil
}

func (s *GormStore) FindReservationByNumber(ctx context.Context, number string) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db(ctx).Where("reservation_number = ?", number).First(&r).Error
	if err != nil {
		return nil, translate(err, "reservation")
	}
	return &r, nil
}

func (s *GormStore) FindOverlapping(ctx context.Context, roomID uint, from, to time.Time, excludeID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	q := s.db(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.NonTerminalStatuses).
		Where("check_in_date < ? AND check_out_date > ?", day(to), day(from))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("check_in_date ASC").Find(&out).Error; err != nil {
		return nil, translate(err, "overlapping reservations")
	}
	return out, nil
}

func (s *GormStore) BookedRoomIDs(ctx context.Context, from, to time.Time) ([]uint, error) {
	var ids []uint
	err := s.db(ctx).Model(&models.Reservation{}).
		Where("status IN ?", models.NonTerminalStatuses).
		Where("check_in_date < ? AND check_out_date > ?", day(to), day(from)).
		Distinct().
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, translate(err, "booked rooms")
	}
	return ids, nil
}

func (s *GormStore) RoomHasReservations(ctx context.Context, roomID uint) (bool, error) {
	var count int64
	err := s.db(ctx).Model(&models.Reservation{}).Where("room_id = ?", roomID).Count(&count).Error
	if err != nil {
		return false, translate(err, "reservations")
	}
	return count > 0, nil
}

func (s *GormStore) FindByGuestName(ctx context.Context, pattern string) ([]models.Reservation, error) {
	var out []models.Reservation
	like := "%" + strings.ToLower(strings.TrimSpace(pattern)) + "%"
	err := s.db(ctx).
		Joins("JOIN guests ON guests.id = reservations.guest_id").
		Where("LOWER(guests.first_name) LIKE ? OR LOWER(guests.last_name) LIKE ? OR LOWER(CONCAT(guests.first_name, ' ', guests.last_name)) LIKE ?", like, like, like).
		Order("reservations.check_in_date ASC").
		Order("reservations.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "reservations")
	}
	return out, nil
}

func (s *GormStore) FindByCheckInDateAndStatusIn(ctx context.Context, date time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.db(ctx).
		Where("check_in_date = ? AND status IN ?", day(date), statuses).
		Order("check_in_date ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "reservations")
	}
	return out, nil
}

func (s *GormStore) FindByCheckOutDateAndStatus(ctx context.Context, date time.Time, status models.ReservationStatus) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.db(ctx).
		Where("check_out_date = ? AND status = ?", day(date), status).
		Order("check_out_date ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "reservations")
	}
	return out, nil
}

func (s *GormStore) FindPendingBefore(ctx context.Context, date time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.db(ctx).
		Where("status = ? AND check_in_date < ?", models.StatusPending, day(date)).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "reservations")
	}
	return out, nil
}

// ---------------- payments ----------------

func (s *GormStore) SavePayment(ctx context.Context, p *models.Payment) error {
	return translate(s.db(ctx).Create(p).Error, "payment")
}

func (s *GormStore) ListPayments(ctx context.Context, reservationID uint) ([]models.Payment, error) {
	var out []models.Payment
	err := s.db(ctx).
		Where("reservation_id = ?", reservationID).
		Order("paid_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err, "payments")
	}
	return out, nil
}
