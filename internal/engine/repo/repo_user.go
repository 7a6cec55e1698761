package repo

import (
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/database"
	"gorm.io/gorm"
)

type IUserRepository interface {
	// CreateWithAccount inserts the user and its credential account row
	// in one transaction.
	CreateWithAccount(u *model.User, a *model.Account) error
	GetById(userId string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	// GetCredential returns the credential account (provider_id =
	// "credential") holding the password hash.
	GetCredential(userId string) (*model.Account, error)
	EmailExists(email string) (bool, error)
}

type UserRepo struct {
	database.IDatabase
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{IDatabase: db}
}

func (r *UserRepo) CreateWithAccount(u *model.User, a *model.Account) error {
	return r.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

func (r *UserRepo) GetById(userId string) (*model.User, error) {
	var u model.User
	err := r.Database().Where("id = ?", userId).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(email string) (*model.User, error) {
	var u model.User
	err := r.Database().Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetCredential(userId string) (*model.Account, error) {
	var a model.Account
	err := r.Database().
		Where("user_id = ? AND provider_id = ?", userId, model.ProviderCredential).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *UserRepo) EmailExists(email string) (bool, error) {
	var count int64
	err := r.Database().Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
