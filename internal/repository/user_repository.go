package repository

import (
	"fmt"

	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByGoogleID(googleID string) (*model.User, error)
	Update(user *model.User) error
	UpdatePassword(id uint, passwordHash string) error
	UpdateEmail(id uint, email string) error
	MarkVerified(id uint) error
	// SoftDelete anonymizes PII before flagging the row deleted, so a restore
	// cannot resurrect the original name/email.
	SoftDelete(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(googleID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdatePassword(id uint, passwordHash string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) UpdateEmail(id uint, email string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("email", email).Error
}

func (r *userRepository) MarkVerified(id uint) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("verified", true).Error
}

func (r *userRepository) SoftDelete(user *model.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":      "Deleted User",
			"email":     fmt.Sprintf("deleted-%d@invalid.local", user.ID),
			"google_id": nil,
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.ActionToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
