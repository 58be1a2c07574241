package directory

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/pkg/log"
)

// GormStreamDirectory implements StreamDirectory using GORM.
type GormStreamDirectory struct {
	db *gorm.DB
}

// NewGormStreamDirectory creates a new GORM-based stream directory.
func NewGormStreamDirectory(db *gorm.DB) *GormStreamDirectory {
	return &GormStreamDirectory{db: db}
}

// FindByID retrieves a stream record by uid.
func (r *GormStreamDirectory) FindByID(ctx context.Context, uid string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	var model domain.StreamModel
	result := r.db.WithContext(ctx).First(&model, "uid = ?", uid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldStreamUID, uid).Msg("failed to get stream by uid")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindByOwner retrieves streams owned by a user.
func (r *GormStreamDirectory) FindByOwner(ctx context.Context, ownerID string) ([]domain.Stream, error) {
	l := log.Ctx(ctx)

	var models []domain.StreamModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldUserID, ownerID).Msg("failed to get streams by owner")
		return nil, result.Error
	}

	return toDomainList(models), nil
}

// FindActive retrieves all streams with active status.
func (r *GormStreamDirectory) FindActive(ctx context.Context) ([]domain.Stream, error) {
	l := log.Ctx(ctx)

	var models []domain.StreamModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StreamStatusActive)).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to list active streams")
		return nil, result.Error
	}

	return toDomainList(models), nil
}

// UpdateStatus flips a stream's lifecycle status.
func (r *GormStreamDirectory) UpdateStatus(ctx context.Context, uid string, status domain.StreamStatus) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldStreamUID, uid).Msg("failed to update stream status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}

	l.Debug().Str(log.FieldStreamUID, uid).Str(log.FieldStatus, string(status)).Msg("stream status updated")
	return nil
}

func toDomainList(models []domain.StreamModel) []domain.Stream {
	streams := make([]domain.Stream, len(models))
	for i, model := range models {
		streams[i] = *model.ToDomain()
	}
	return streams
}
