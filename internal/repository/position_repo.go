package repository

import (
	"context"

	"gorm.io/gorm"

	"church-scale/backend/internal/model"
)

// PositionRepository 岗位数据访问接口
type PositionRepository interface {
	Create(ctx context.Context, pos *model.Position) error
	GetByID(ctx context.Context, id string) (*model.Position, error)
	List(ctx context.Context, departmentID string) ([]model.Position, error)
	Update(ctx context.Context, pos *model.Position) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// CountByDepartment 部门下有效岗位数量（删除部门前的阻断检查）
	CountByDepartment(ctx context.Context, departmentID string) (int64, error)
}

type positionRepo struct {
	db *gorm.DB
}

// NewPositionRepo 创建 PositionRepository 实例
func NewPositionRepo(db *gorm.DB) PositionRepository {
	return &positionRepo{db: db}
}

func (r *positionRepo) Create(ctx context.Context, pos *model.Position) error {
	return r.db.WithContext(ctx).Create(pos).Error
}

func (r *positionRepo) GetByID(ctx context.Context, id string) (*model.Position, error) {
	var pos model.Position
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("position_id = ?", id).
		First(&pos).Error
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *positionRepo) List(ctx context.Context, departmentID string) ([]model.Position, error) {
	var positions []model.Position
	db := r.db.WithContext(ctx).Preload("Department")

	if departmentID != "" {
		db = db.Where("department_id = ?", departmentID)
	}

	err := db.Order("name ASC").Find(&positions).Error
	return positions, err
}

func (r *positionRepo) Update(ctx context.Context, pos *model.Position) error {
	return r.db.WithContext(ctx).Save(pos).Error
}

func (r *positionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("position_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *positionRepo) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}
