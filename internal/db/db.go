package db

import (
	"errors"
	"fmt"
	"log"
	"readshelf/internal/models"
	"readshelf/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Println("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate runs AutoMigrate for every model.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Comment{},
		&models.CommentVote{},
		&models.Bookmark{},
		&models.Notification{},
		&models.NotificationSetting{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// EnsureAdmin creates the bootstrap admin if it does not exist yet. An
// existing user with that name is promoted, its password is left alone.
func EnsureAdmin(conn *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var user models.User
	err := conn.Where("username = ?", username).First(&user).Error
	if err == nil {
		if user.Role != models.RoleAdmin {
			log.Printf("Promoting %s to admin", username)
			return conn.Model(&user).Update("role", models.RoleAdmin).Error
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user = models.User{
		Username:    username,
		Password:    hash,
		Role:        models.RoleAdmin,
		DisplayName: username,
	}
	if err := conn.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("Bootstrap admin %s created", username)
	return nil
}
