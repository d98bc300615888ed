package repository

import (
	"time"

	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
)

type TokenRepository interface {
	// Replace deletes any live token of the same type for the same user
	// before inserting, inside one transaction, so a user never holds two
	// concurrent tokens of one type.
	Replace(token *model.ActionToken) error
	FindByToken(token string) (*model.ActionToken, error)
	Delete(id uint) error
	DeleteExpired() (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Replace(token *model.ActionToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", token.UserID, token.Type).
			Delete(&model.ActionToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *tokenRepository) FindByToken(token string) (*model.ActionToken, error) {
	var t model.ActionToken
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) Delete(id uint) error {
	return r.db.Delete(&model.ActionToken{}, id).Error
}

func (r *tokenRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at < ?", time.Now()).Delete(&model.ActionToken{})
	return res.RowsAffected, res.Error
}
