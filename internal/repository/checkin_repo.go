package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"church-scale/backend/internal/model"
)

// CheckinRepository 签到数据访问接口
// Upsert 依赖 checkins.schedule_id 唯一索引：并发签到收敛为单行，重复签到就地更新。
// CreateIfMissing 同一索引上 DoNothing：已有签到（含并发落入的）一律不覆盖
type CheckinRepository interface {
	GetByScheduleID(ctx context.Context, scheduleID string) (*model.Checkin, error)
	Upsert(ctx context.Context, checkin *model.Checkin) error
	CreateIfMissing(ctx context.Context, checkin *model.Checkin) (bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Checkin, error)
	ListByDepartmentAndDate(ctx context.Context, departmentID string, date time.Time) ([]model.Checkin, error)
}

type checkinRepo struct {
	db *gorm.DB
}

// NewCheckinRepo 创建 CheckinRepository 实例
func NewCheckinRepo(db *gorm.DB) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) GetByScheduleID(ctx context.Context, scheduleID string) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

func (r *checkinRepo) Upsert(ctx context.Context, checkin *model.Checkin) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "schedule_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"checkin_time", "status", "latitude", "longitude",
				"location_valid", "updated_at", "updated_by",
			}),
		}).
		Create(checkin).Error
}

func (r *checkinRepo) CreateIfMissing(ctx context.Context, checkin *model.Checkin) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}},
			DoNothing: true,
		}).
		Create(checkin)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *checkinRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Checkin, error) {
	var checkins []model.Checkin
	err := r.db.WithContext(ctx).
		Where("duty_date = ?", date.Format("2006-01-02")).
		Find(&checkins).Error
	return checkins, err
}

func (r *checkinRepo) ListByDepartmentAndDate(ctx context.Context, departmentID string, date time.Time) ([]model.Checkin, error) {
	var checkins []model.Checkin
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("department_id = ? AND duty_date = ?", departmentID, date.Format("2006-01-02")).
		Find(&checkins).Error
	return checkins, err
}
