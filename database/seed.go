package database

import (
	"eduhub/models"

	"gorm.io/gorm"
)

// EnsureAdmin creates an admin account or promotes the existing account with that email.
// hashedPassword replaces the stored password when not empty.
func EnsureAdmin(db *gorm.DB, name, email, hashedPassword string) (models.User, bool, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			Name:     name,
			Email:    email,
			Password: hashedPassword,
			Role:     models.RoleAdmin,
		}
		if err := db.Create(&user).Error; err != nil {
			return user, false, err
		}
		return user, true, nil
	}
	if err != nil {
		return user, false, err
	}

	user.Role = models.RoleAdmin
	user.IsDeleted = false
	user.IsBlocked = false
	user.BlockedUntil = nil
	if name != "" {
		user.Name = name
	}
	if hashedPassword != "" {
		user.Password = hashedPassword
	}
	return user, false, db.Save(&user).Error
}
