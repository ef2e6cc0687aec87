package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"church-scale/backend/internal/model"
)

// AlertFilter 提醒列表过滤条件
// DepartmentIDs 为空切片时不做部门过滤（admin 全量视角）
type AlertFilter struct {
	DepartmentIDs []string
	UnreadOnly    bool
	Offset        int
	Limit         int
}

// AlertRepository 提醒数据访问接口
// CreateIfAbsent 依赖 (member_id, duty_date, type) 唯一索引实现去重
type AlertRepository interface {
	CreateIfAbsent(ctx context.Context, alert *model.Alert) (bool, error)
	List(ctx context.Context, filter AlertFilter) ([]model.Alert, int64, error)
	GetByID(ctx context.Context, id string) (*model.Alert, error)
	MarkRead(ctx context.Context, id string) error
}

type alertRepo struct {
	db *gorm.DB
}

// NewAlertRepo 创建 AlertRepository 实例
func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db: db}
}

func (r *alertRepo) CreateIfAbsent(ctx context.Context, alert *model.Alert) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}, {Name: "duty_date"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(alert)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *alertRepo) List(ctx context.Context, filter AlertFilter) ([]model.Alert, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Alert{})

	if len(filter.DepartmentIDs) > 0 {
		db = db.Where("department_id IN ?", filter.DepartmentIDs)
	}
	if filter.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []model.Alert
	err := db.Order("created_at DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&alerts).Error
	return alerts, total, err
}

func (r *alertRepo) GetByID(ctx context.Context, id string) (*model.Alert, error) {
	var alert model.Alert
	err := r.db.WithContext(ctx).
		Where("alert_id = ?", id).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("alert_id = ?", id).
		Update("is_read", true).Error
}
