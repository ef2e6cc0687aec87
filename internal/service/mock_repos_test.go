package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"church-scale/backend/config"
	"church-scale/backend/internal/model"
	"church-scale/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByMemberID(_ context.Context, memberID string) (*model.User, error) {
	for _, u := range m.users {
		if u.MemberID != nil && *u.MemberID == memberID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, approvalStatus, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if approvalStatus != "" && u.ApprovalStatus != approvalStatus {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members   map[string]*model.Member
	schedules *mockScheduleRepo // 引用检查
	seq       int
}

func newMockMemberRepo(schedules *mockScheduleRepo) *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member), schedules: schedules}
}

func (m *mockMemberRepo) Create(_ context.Context, member *model.Member) error {
	if member.MemberID == "" {
		m.seq++
		member.MemberID = fmt.Sprintf("member-%d", m.seq)
	}
	m.members[member.MemberID] = member
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	if mem, ok := m.members[id]; ok {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Member, int64, error) {
	var all []model.Member
	for _, mem := range m.members {
		if keyword != "" && !strings.Contains(mem.Name, keyword) {
			continue
		}
		all = append(all, *mem)
	}
	return all, int64(len(all)), nil
}

func (m *mockMemberRepo) Update(_ context.Context, member *model.Member) error {
	m.members[member.MemberID] = member
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.members, id)
	return nil
}

func (m *mockMemberRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	if m.schedules == nil {
		return false, nil
	}
	for _, s := range m.schedules.schedules {
		if s.MemberID == id {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts map[string]*model.Department
	seq   int
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		m.seq++
		dept.DepartmentID = fmt.Sprintf("dept-%d", m.seq)
	}
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, includeInactive bool) ([]model.Department, error) {
	var all []model.Department
	for _, d := range m.depts {
		if !includeInactive && !d.IsActive {
			continue
		}
		all = append(all, *d)
	}
	return all, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.depts, id)
	return nil
}

// ── Mock PositionRepository ──

type mockPositionRepo struct {
	positions map[string]*model.Position
	seq       int
}

func newMockPositionRepo() *mockPositionRepo {
	return &mockPositionRepo{positions: make(map[string]*model.Position)}
}

func (m *mockPositionRepo) Create(_ context.Context, pos *model.Position) error {
	for _, p := range m.positions {
		if p.DepartmentID == pos.DepartmentID && p.Name == pos.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if pos.PositionID == "" {
		m.seq++
		pos.PositionID = fmt.Sprintf("pos-%d", m.seq)
	}
	m.positions[pos.PositionID] = pos
	return nil
}

func (m *mockPositionRepo) GetByID(_ context.Context, id string) (*model.Position, error) {
	if p, ok := m.positions[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPositionRepo) List(_ context.Context, departmentID string) ([]model.Position, error) {
	var all []model.Position
	for _, p := range m.positions {
		if departmentID != "" && p.DepartmentID != departmentID {
			continue
		}
		all = append(all, *p)
	}
	return all, nil
}

func (m *mockPositionRepo) Update(_ context.Context, pos *model.Position) error {
	m.positions[pos.PositionID] = pos
	return nil
}

func (m *mockPositionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.positions, id)
	return nil
}

func (m *mockPositionRepo) CountByDepartment(_ context.Context, departmentID string) (int64, error) {
	var count int64
	for _, p := range m.positions {
		if p.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

// ── Mock ScheduleRepository ──
// 模拟 (member_id, duty_date) 唯一索引：冲突时返回 gorm.ErrDuplicatedKey

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	checkins  *mockCheckinRepo // 缺签查询
	depts     *mockDepartmentRepo
	seq       int

	// createErr 一次性注入 Create 错误，用于模拟检测与写入之间的并发竞争
	createErr error
}

func newMockScheduleRepo(depts *mockDepartmentRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule), depts: depts}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (m *mockScheduleRepo) hasDuplicate(s *model.Schedule) bool {
	for _, e := range m.schedules {
		if e.ScheduleID != s.ScheduleID &&
			e.MemberID == s.MemberID &&
			dateKey(e.DutyDate) == dateKey(s.DutyDate) {
			return true
		}
	}
	return false
}

// attach 补齐部门关联，模拟 Preload("Department")
func (m *mockScheduleRepo) attach(s model.Schedule) model.Schedule {
	if m.depts != nil {
		if d, ok := m.depts.depts[s.DepartmentID]; ok {
			s.Department = d
		}
	}
	if m.checkins != nil {
		if c, ok := m.checkins.bySchedule[s.ScheduleID]; ok {
			s.Checkin = c
		}
	}
	return s
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	if m.hasDuplicate(schedule) {
		return gorm.ErrDuplicatedKey
	}
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	}
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		attached := m.attach(*s)
		return &attached, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]model.Schedule, int64, error) {
	var all []model.Schedule
	for _, s := range m.schedules {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.MemberID != "" && s.MemberID != filter.MemberID {
			continue
		}
		if filter.DateFrom != nil && dateKey(s.DutyDate) < dateKey(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && dateKey(s.DutyDate) > dateKey(*filter.DateTo) {
			continue
		}
		all = append(all, m.attach(*s))
	}
	return all, int64(len(all)), nil
}

func (m *mockScheduleRepo) ListByMemberAndDate(_ context.Context, memberID string, date time.Time, excludeID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.MemberID != memberID || dateKey(s.DutyDate) != dateKey(date) {
			continue
		}
		if excludeID != "" && s.ScheduleID == excludeID {
			continue
		}
		result = append(result, m.attach(*s))
	}
	return result, nil
}

func (m *mockScheduleRepo) ListMissingCheckins(_ context.Context, date time.Time) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if dateKey(s.DutyDate) != dateKey(date) {
			continue
		}
		if m.checkins != nil {
			if _, ok := m.checkins.bySchedule[s.ScheduleID]; ok {
				continue
			}
		}
		result = append(result, m.attach(*s))
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	if m.hasDuplicate(schedule) {
		return gorm.ErrDuplicatedKey
	}
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.schedules, id)
	return nil
}

// ── Mock CheckinRepository ──
// 模拟 schedule_id 唯一索引：Upsert 收敛为单行

type mockCheckinRepo struct {
	bySchedule map[string]*model.Checkin
	seq        int
}

func newMockCheckinRepo() *mockCheckinRepo {
	return &mockCheckinRepo{bySchedule: make(map[string]*model.Checkin)}
}

func (m *mockCheckinRepo) GetByScheduleID(_ context.Context, scheduleID string) (*model.Checkin, error) {
	if c, ok := m.bySchedule[scheduleID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckinRepo) Upsert(_ context.Context, checkin *model.Checkin) error {
	if existing, ok := m.bySchedule[checkin.ScheduleID]; ok {
		existing.CheckinTime = checkin.CheckinTime
		existing.Status = checkin.Status
		existing.Latitude = checkin.Latitude
		existing.Longitude = checkin.Longitude
		existing.LocationValid = checkin.LocationValid
		*checkin = *existing
		return nil
	}
	m.seq++
	checkin.CheckinID = fmt.Sprintf("checkin-%d", m.seq)
	m.bySchedule[checkin.ScheduleID] = checkin
	return nil
}

func (m *mockCheckinRepo) CreateIfMissing(_ context.Context, checkin *model.Checkin) (bool, error) {
	if _, ok := m.bySchedule[checkin.ScheduleID]; ok {
		return false, nil
	}
	m.seq++
	checkin.CheckinID = fmt.Sprintf("checkin-%d", m.seq)
	m.bySchedule[checkin.ScheduleID] = checkin
	return true, nil
}

func (m *mockCheckinRepo) ListByDate(_ context.Context, date time.Time) ([]model.Checkin, error) {
	var result []model.Checkin
	for _, c := range m.bySchedule {
		if dateKey(c.DutyDate) == dateKey(date) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCheckinRepo) ListByDepartmentAndDate(_ context.Context, departmentID string, date time.Time) ([]model.Checkin, error) {
	var result []model.Checkin
	for _, c := range m.bySchedule {
		if c.DepartmentID == departmentID && dateKey(c.DutyDate) == dateKey(date) {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock AlertRepository ──
// 模拟 (member_id, duty_date, type) 唯一索引去重

type mockAlertRepo struct {
	alerts map[string]*model.Alert // key: member:date:type
	seq    int
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: make(map[string]*model.Alert)}
}

func alertKey(a *model.Alert) string {
	return fmt.Sprintf("%s:%s:%s", a.MemberID, dateKey(a.DutyDate), a.Type)
}

func (m *mockAlertRepo) CreateIfAbsent(_ context.Context, alert *model.Alert) (bool, error) {
	key := alertKey(alert)
	if _, ok := m.alerts[key]; ok {
		return false, nil
	}
	m.seq++
	alert.AlertID = fmt.Sprintf("alert-%d", m.seq)
	m.alerts[key] = alert
	return true, nil
}

func (m *mockAlertRepo) List(_ context.Context, filter repository.AlertFilter) ([]model.Alert, int64, error) {
	var all []model.Alert
	for _, a := range m.alerts {
		if len(filter.DepartmentIDs) > 0 {
			found := false
			for _, id := range filter.DepartmentIDs {
				if a.DepartmentID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.UnreadOnly && a.IsRead {
			continue
		}
		all = append(all, *a)
	}
	return all, int64(len(all)), nil
}

func (m *mockAlertRepo) GetByID(_ context.Context, id string) (*model.Alert, error) {
	for _, a := range m.alerts {
		if a.AlertID == id {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAlertRepo) MarkRead(_ context.Context, id string) error {
	for _, a := range m.alerts {
		if a.AlertID == id {
			a.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── 测试装配 ──

type testRepos struct {
	users     *mockUserRepo
	members   *mockMemberRepo
	depts     *mockDepartmentRepo
	positions *mockPositionRepo
	schedules *mockScheduleRepo
	checkins  *mockCheckinRepo
	alerts    *mockAlertRepo
}

// newTestRepository 组装全套 Mock Repository
func newTestRepository() (*repository.Repository, *testRepos) {
	depts := newMockDepartmentRepo()
	schedules := newMockScheduleRepo(depts)
	checkins := newMockCheckinRepo()
	schedules.checkins = checkins

	mocks := &testRepos{
		users:     newMockUserRepo(),
		members:   newMockMemberRepo(schedules),
		depts:     depts,
		positions: newMockPositionRepo(),
		schedules: schedules,
		checkins:  checkins,
		alerts:    newMockAlertRepo(),
	}

	repo := &repository.Repository{
		User:       mocks.users,
		Member:     mocks.members,
		Department: mocks.depts,
		Position:   mocks.positions,
		Schedule:   mocks.schedules,
		Checkin:    mocks.checkins,
		Alert:      mocks.alerts,
	}
	return repo, mocks
}

// newTestConfig 测试配置：截止 17:20 / 服侍结束 21:00 / 围栏默认中心 100 米
func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-at-least-16b",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 168 * time.Hour,
		},
		Duty: config.DutyConfig{
			CheckinDeadline:  "17:20",
			ServiceEnd:       "21:00",
			FenceLat:         -23.5505,
			FenceLng:         -46.6333,
			FenceRadiusM:     100,
			Timezone:         "America/Sao_Paulo",
			ConflictStrategy: "day_exclusive",
			SweepInterval:    10 * time.Minute,
		},
	}
}
