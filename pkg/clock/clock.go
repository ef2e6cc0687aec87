package clock

import "time"

// Clock 时钟接口
// 签到判定与缺勤清扫统一通过注入时钟读取当前时间，测试中可替换为固定时钟
type Clock interface {
	Now() time.Time
}

// System 系统时钟，固定到指定业务时区
type System struct {
	loc *time.Location
}

// NewSystem 创建系统时钟
func NewSystem(loc *time.Location) *System {
	return &System{loc: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Fixed 固定时钟（测试用）
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }
