package store

import (
	"context"
	"fmt"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	if err := s.create(ctx, room); err != nil {
		return fmt.Errorf("failed to create room %s: %w", room.RoomNumber, err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.conn(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.conn(ctx).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) UpdateRoom(ctx context.Context, room *models.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	return translate(s.conn(ctx).Omit("CreatedAt").Save(room).Error)
}

// DeleteRoom removes a room. Tenants referencing it become unassigned.
func (s *Store) DeleteRoom(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.conn(ctx).Model(&models.Tenant{}).
			Where("room_id = ?", id).
			Update("room_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unassign tenants from room %d: %w", id, err)
		}
		res := tx.conn(ctx).Delete(&models.Room{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete room %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		return nil
	})
}

func (s *Store) CountRooms(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Room{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

// CountOccupiedRooms counts distinct rooms held by at least one active tenant.
func (s *Store) CountOccupiedRooms(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Tenant{}).
		Where("is_active = ? AND room_id IS NOT NULL", true).
		Distinct("room_id").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied rooms: %w", err)
	}
	return n, nil
}

// CountVacantRooms counts rooms with no active tenant.
func (s *Store) CountVacantRooms(ctx context.Context) (int64, error) {
	occupied := s.conn(ctx).Model(&models.Tenant{}).
		Select("room_id").
		Where("is_active = ? AND room_id IS NOT NULL", true)

	var n int64
	if err := s.conn(ctx).Model(&models.Room{}).Where("id NOT IN (?)", occupied).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count vacant rooms: %w", err)
	}
	return n, nil
}
