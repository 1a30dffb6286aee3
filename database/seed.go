package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// DefaultCategories are created on an empty database
var DefaultCategories = []model.Category{
	{Name: "Programming", URL: "programming", Description: "Coding courses for all ages", Status: "active"},
	{Name: "Mathematics", URL: "mathematics", Description: "From arithmetic to olympiad preparation", Status: "active"},
	{Name: "Languages", URL: "languages", Description: "Foreign language courses", Status: "active"},
	{Name: "Robotics", URL: "robotics", Description: "Hands-on engineering", Status: "active"},
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(adminEmail, adminPassword string) error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the super admin unless one exists
func (s *Seeder) SeedAdminUser(adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	var existing model.User
	err := s.db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		log.Println("Admin user already exists, skipping...")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleSuperAdmin,
		Status:       model.UserStatusActive,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user: %s\n", admin.Email)
	return nil
}

// SeedCategories inserts the default categories, skipping names that exist
func (s *Seeder) SeedCategories() error {
	categories := make([]model.Category, len(DefaultCategories))
	copy(categories, DefaultCategories)

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&categories)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("Seeded %d categories\n", res.RowsAffected)
	return nil
}
