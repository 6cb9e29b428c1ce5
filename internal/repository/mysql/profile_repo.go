package mysql

import (
	"context"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func (r *ProfileRepository) Create(profile *model.Profile) error {
	return r.DB.Create(profile).Error
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).First(&profile, id).Error
	return &profile, err
}

func (r *ProfileRepository) FindByUsername(username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.Where("username = ? OR email = ?", username, username).First(&profile).Error
	return &profile, err
}

func (r *ProfileRepository) FindByEmail(email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.Where("email = ?", email).First(&profile).Error
	return &profile, err
}

func (r *ProfileRepository) UpdatePassword(profile *model.Profile, newPassword string) error {
	return r.DB.Model(profile).Update("password", newPassword).Error
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id uint64, role string) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("role", role)
	return tx.RowsAffected, tx.Error
}

// FindSupportContact 取建号最早的特权账号（admin/moderator）。
// created_at 相同时按 id 升序打破并列，保证进程内结果稳定。
func (r *ProfileRepository) FindSupportContact(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).
		Where("role IN ?", []string{pkg.RoleAdmin, pkg.RoleModerator}).
		Order("created_at ASC, id ASC").
		First(&profile).Error
	return &profile, err
}

func (r *ProfileRepository) List(ctx context.Context, offset, limit int) ([]model.Profile, error) {
	var list []model.Profile
	err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
