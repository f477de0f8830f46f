package repo

import (
	"courier/internal/api/models"

	"gorm.io/gorm"
)

type OperatorRepository struct {
	Db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{Db: db}
}

func (slf *OperatorRepository) FindByEmail(email string) (models.Operator, error) {
	var operator models.Operator
	err := slf.Db.Where("email = ?", email).First(&operator).Error
	return operator, err
}

func (slf *OperatorRepository) FindByID(id uint) (models.Operator, error) {
	var operator models.Operator
	err := slf.Db.First(&operator, id).Error
	return operator, err
}

func (slf *OperatorRepository) Create(operator *models.Operator) error {
	return slf.Db.Create(operator).Error
}

func (slf *OperatorRepository) Update(operator *models.Operator) error {
	return slf.Db.Save(operator).Error
}

func (slf *OperatorRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := slf.Db.Model(&models.Operator{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
