package repository

import (
	"context"

	"gorm.io/gorm"

	"church-scale/backend/internal/model"
)

// MemberRepository 成员数据访问接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	List(ctx context.Context, keyword string, offset, limit int) ([]model.Member, int64, error)
	Update(ctx context.Context, member *model.Member) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// IsReferenced 成员是否已被任何有效排班引用
	IsReferenced(ctx context.Context, id string) (bool, error)
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository 实例
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) List(ctx context.Context, keyword string, offset, limit int) ([]model.Member, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Member{})

	if keyword != "" {
		db = db.Where("name ILIKE ?", "%"+keyword+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.Member
	err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&members).Error
	return members, total, err
}

func (r *memberRepo) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("member_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *memberRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("member_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
