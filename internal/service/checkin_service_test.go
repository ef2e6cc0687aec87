package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"church-scale/backend/internal/authz"
	"church-scale/backend/internal/dto"
	"church-scale/backend/internal/model"
	"church-scale/backend/pkg/clock"
	"church-scale/backend/pkg/geo"
)

// 业务时区固定为 UTC-3，避免测试依赖本机 tzdata
var testLoc = time.FixedZone("-03", -3*3600)

// 围栏中心即默认配置中心点
var (
	fenceCenter = geo.Point{Lat: -23.5505, Lng: -46.6333}

	// 纬度偏移 0.0004° ≈ 44 米，在 100 米围栏内
	nearbyPoint = geo.Point{Lat: -23.5509, Lng: -46.6333}
	// 纬度偏移 0.002° ≈ 222 米，在围栏外
	farPoint = geo.Point{Lat: -23.5525, Lng: -46.6333}
)

type checkinTestEnv struct {
	svc    CheckinService
	mocks  *testRepos
	member *authz.Context
	now    time.Time
}

// newCheckinTestEnv 构造签到测试环境
// 固定时钟指向值班日 nowHHMM 时刻，预置一名已关联成员档案的用户及其当日排班
func newCheckinTestEnv(t *testing.T, nowHHMM string) *checkinTestEnv {
	t.Helper()

	cfg := newTestConfig()
	repo, mocks := newTestRepository()
	ctx := context.Background()

	dept := &model.Department{Name: "接待部", IsActive: true}
	if err := mocks.depts.Create(ctx, dept); err != nil {
		t.Fatalf("预置部门失败: %v", err)
	}
	pos := &model.Position{DepartmentID: dept.DepartmentID, Name: "迎新接待", IsActive: true}
	if err := mocks.positions.Create(ctx, pos); err != nil {
		t.Fatalf("预置岗位失败: %v", err)
	}
	member := &model.Member{Name: "王弟兄"}
	if err := mocks.members.Create(ctx, member); err != nil {
		t.Fatalf("预置成员失败: %v", err)
	}
	user := &model.User{
		Name:           "王弟兄",
		Email:          "wang@example.com",
		Role:           model.RoleMember,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
		MemberID:       &member.MemberID,
	}
	if err := mocks.users.Create(ctx, user); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}

	tm, err := time.Parse("15:04", nowHHMM)
	if err != nil {
		t.Fatalf("解析测试时刻失败: %v", err)
	}
	now := time.Date(2025, 6, 1, tm.Hour(), tm.Minute(), 0, 0, testLoc)

	schedule := &model.Schedule{
		MemberID:     member.MemberID,
		DepartmentID: dept.DepartmentID,
		PositionID:   pos.PositionID,
		DutyDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := mocks.schedules.Create(ctx, schedule); err != nil {
		t.Fatalf("预置排班失败: %v", err)
	}

	fence := geo.Fence{Center: fenceCenter, RadiusM: cfg.Duty.FenceRadiusM}
	svc := NewCheckinService(cfg, repo, fence, &clock.Fixed{T: now}, zap.NewNop())

	return &checkinTestEnv{
		svc:   svc,
		mocks: mocks,
		member: &authz.Context{
			UserID:         user.UserID,
			Role:           model.RoleMember,
			ApprovalStatus: model.ApprovalApproved,
			EmailVerified:  true,
		},
		now: now,
	}
}

func checkinReq(env *checkinTestEnv, p geo.Point) *dto.CheckinRequest {
	return &dto.CheckinRequest{
		ScheduleID: "sched-1",
		Latitude:   p.Lat,
		Longitude:  p.Lng,
	}
}

func TestCheckinOnTimeBeforeDeadline(t *testing.T) {
	env := newCheckinTestEnv(t, "17:19")

	resp, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, fenceCenter))
	if err != nil {
		t.Fatalf("截止前签到应成功: %v", err)
	}
	if resp.Status != model.CheckinOnTime {
		t.Errorf("状态 = %s, 期望 %s", resp.Status, model.CheckinOnTime)
	}
	if resp.CheckinTime == nil {
		t.Error("响应应携带签到时刻")
	}
	if len(env.mocks.checkins.bySchedule) != 1 {
		t.Errorf("签到记录数 = %d, 期望 1", len(env.mocks.checkins.bySchedule))
	}
}

func TestCheckinWindowClosedAfterDeadline(t *testing.T) {
	env := newCheckinTestEnv(t, "17:21")

	_, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, fenceCenter))
	if !errors.Is(err, ErrCheckinWindowClosed) {
		t.Fatalf("截止后签到应报关窗, got: %v", err)
	}
	// 关窗拒绝不落任何记录，缺勤留待清扫任务落定
	if len(env.mocks.checkins.bySchedule) != 0 {
		t.Errorf("关窗拒绝后签到记录数 = %d, 期望 0", len(env.mocks.checkins.bySchedule))
	}
}

func TestCheckinAtDeadlineStillOnTime(t *testing.T) {
	env := newCheckinTestEnv(t, "17:20")

	resp, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, fenceCenter))
	if err != nil {
		t.Fatalf("恰在截止时刻签到应成功: %v", err)
	}
	if resp.Status != model.CheckinOnTime {
		t.Errorf("状态 = %s, 期望 %s", resp.Status, model.CheckinOnTime)
	}
}

func TestCheckinInsideFenceBoundary(t *testing.T) {
	env := newCheckinTestEnv(t, "17:15")

	resp, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, nearbyPoint))
	if err != nil {
		t.Fatalf("围栏内约 44 米处签到应成功: %v", err)
	}
	if resp.DistanceM == nil || *resp.DistanceM <= 0 || *resp.DistanceM > 100 {
		t.Errorf("距离应在 (0, 100] 米内, got: %v", resp.DistanceM)
	}
}

func TestCheckinOutsideFence(t *testing.T) {
	env := newCheckinTestEnv(t, "17:00")

	_, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, farPoint))
	if !errors.Is(err, ErrOutsideFence) {
		t.Fatalf("围栏外签到应被拒绝, got: %v", err)
	}
	if len(env.mocks.checkins.bySchedule) != 0 {
		t.Error("围栏外拒绝不应落库")
	}
}

// 围栏与窗口相互独立：窗口关闭时围栏外的请求同样只能收到各自的拒绝原因
func TestCheckinFenceRejectionIndependentOfWindow(t *testing.T) {
	env := newCheckinTestEnv(t, "17:30")

	// 判定链先围栏后窗口：围栏外 + 关窗 → 报围栏
	_, err := env.svc.Checkin(context.Background(), env.member, checkinReq(env, farPoint))
	if !errors.Is(err, ErrOutsideFence) {
		t.Fatalf("围栏外应报围栏错误而非关窗, got: %v", err)
	}
}

// 离线补报：请求在截止前到达，但记录时刻已过截止线，受理并判为迟到
func TestCheckinLateByRecordedTime(t *testing.T) {
	env := newCheckinTestEnv(t, "17:10")

	recordedAt := "2025-06-01T17:45:00-03:00"
	req := checkinReq(env, fenceCenter)
	req.RecordedAt = &recordedAt

	resp, err := env.svc.Checkin(context.Background(), env.member, req)
	if err != nil {
		t.Fatalf("截止前到达的补报应被受理: %v", err)
	}
	if resp.Status != model.CheckinLate {
		t.Errorf("状态 = %s, 期望 %s", resp.Status, model.CheckinLate)
	}
}

// 重复签到收敛为单行，第二次覆盖第一次
func TestCheckinRepeatUpserts(t *testing.T) {
	env := newCheckinTestEnv(t, "17:00")
	ctx := context.Background()

	first, err := env.svc.Checkin(ctx, env.member, checkinReq(env, fenceCenter))
	if err != nil {
		t.Fatalf("首次签到失败: %v", err)
	}
	second, err := env.svc.Checkin(ctx, env.member, checkinReq(env, nearbyPoint))
	if err != nil {
		t.Fatalf("重复签到应被受理: %v", err)
	}

	if len(env.mocks.checkins.bySchedule) != 1 {
		t.Fatalf("签到记录数 = %d, 期望收敛为 1", len(env.mocks.checkins.bySchedule))
	}
	if first.ID != second.ID {
		t.Errorf("两次签到应落在同一条记录: %s vs %s", first.ID, second.ID)
	}
	stored := env.mocks.checkins.bySchedule["sched-1"]
	if stored.Latitude == nil || *stored.Latitude != nearbyPoint.Lat {
		t.Error("重复签到应以最后一次坐标为准")
	}
}

func TestCheckinNotOwnSchedule(t *testing.T) {
	env := newCheckinTestEnv(t, "17:00")
	ctx := context.Background()

	other := &model.Member{Name: "李姊妹"}
	if err := env.mocks.members.Create(ctx, other); err != nil {
		t.Fatalf("预置成员失败: %v", err)
	}
	otherUser := &model.User{
		Name:           "李姊妹",
		Email:          "li@example.com",
		Role:           model.RoleMember,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
		MemberID:       &other.MemberID,
	}
	if err := env.mocks.users.Create(ctx, otherUser); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}

	otherCtx := &authz.Context{
		UserID:         otherUser.UserID,
		Role:           model.RoleMember,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
	}
	_, err := env.svc.Checkin(ctx, otherCtx, checkinReq(env, fenceCenter))
	if !errors.Is(err, ErrScheduleNotOwn) {
		t.Fatalf("代他人签到应被拒绝, got: %v", err)
	}
}

func TestCheckinNotDutyDay(t *testing.T) {
	env := newCheckinTestEnv(t, "17:00")
	ctx := context.Background()

	// 改排到次日
	sched := env.mocks.schedules.schedules["sched-1"]
	sched.DutyDate = sched.DutyDate.AddDate(0, 0, 1)

	_, err := env.svc.Checkin(ctx, env.member, checkinReq(env, fenceCenter))
	if !errors.Is(err, ErrNotDutyDay) {
		t.Fatalf("非值班日签到应被拒绝, got: %v", err)
	}
}

func TestCheckinNoMemberLinked(t *testing.T) {
	env := newCheckinTestEnv(t, "17:00")
	ctx := context.Background()

	unlinked := &model.User{
		Name:           "访客",
		Email:          "guest@example.com",
		Role:           model.RoleMember,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
	}
	if err := env.mocks.users.Create(ctx, unlinked); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}

	guestCtx := &authz.Context{
		UserID:         unlinked.UserID,
		Role:           model.RoleMember,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
	}
	_, err := env.svc.Checkin(ctx, guestCtx, checkinReq(env, fenceCenter))
	if !errors.Is(err, ErrNoMemberLinked) {
		t.Fatalf("未关联成员档案的用户签到应被拒绝, got: %v", err)
	}
}

func TestDayOverviewScopedToLedDepartments(t *testing.T) {
	env := newCheckinTestEnv(t, "18:00")
	ctx := context.Background()

	req := &dto.CheckinDayRequest{DepartmentID: "dept-1", Date: "2025-06-01"}

	// 不负责该部门的 leader 被拒
	stranger := &authz.Context{
		UserID:         "user-x",
		Role:           model.RoleLeader,
		ApprovalStatus: model.ApprovalApproved,
		EmailVerified:  true,
	}
	if _, err := env.svc.DayOverview(ctx, stranger, req); !errors.Is(err, ErrDeptNotManageable) {
		t.Fatalf("非负责人查看概览应被拒绝, got: %v", err)
	}

	// 负责该部门的 leader 可见，且未签到条目展示为待签到
	leader := &authz.Context{
		UserID:           "user-x",
		Role:             model.RoleLeader,
		ApprovalStatus:   model.ApprovalApproved,
		EmailVerified:    true,
		LedDepartmentIDs: []string{"dept-1"},
	}
	items, err := env.svc.DayOverview(ctx, leader, req)
	if err != nil {
		t.Fatalf("部门负责人查看概览失败: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("概览条目数 = %d, 期望 1", len(items))
	}
	if items[0].Status != model.CheckinPending {
		t.Errorf("未签到条目状态 = %s, 期望 %s", items[0].Status, model.CheckinPending)
	}
}
