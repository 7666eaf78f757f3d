package config

import (
	"log"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSettings(); err != nil {
		return err
	}
	if err := s.seedUsers(); err != nil {
		log.Printf("⚠️ User seeder skipped: %v", err)
	}
	if err := s.seedCustomerCodes(); err != nil {
		log.Printf("⚠️ Customer code seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSettings ensures the singleton settings row exists
func (s *Seeder) seedSettings() error {
	var count int64
	s.db.Model(&models.AppSettings{}).Where("id = ?", models.SettingsRowID).Count(&count)
	if count > 0 {
		return nil
	}

	settings := &models.AppSettings{
		ID:             models.SettingsRowID,
		CutoffEnabled:  false,
		CutoffStart:    "10:00",
		CutoffEnd:      "15:00",
		AutoDeleteDays: 14,
	}
	return s.db.Create(settings).Error
}

// seedUsers seeds the default users.
// The default passwords are for development only; rotate them on first
// login in any shared environment.
func (s *Seeder) seedUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaults := []struct {
		username  string
		fullName  string
		shortName string
		role      string
	}{
		{"admin", "Admin User", "ADM", models.RoleAdmin},
		{"sales1", "Sales Representative 1", "SL1", models.RoleSales},
		{"comm1", "Commercial Manager 1", "CM1", models.RoleCommercial},
	}

	for _, d := range defaults {
		hashed, err := password.Hash(d.username + "123456")
		if err != nil {
			return err
		}
		user := &models.User{
			Username:  d.username,
			FullName:  d.fullName,
			ShortName: d.shortName,
			Password:  hashed,
			Role:      d.role,
			IsActive:  true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded user: %s (%s)", user.Username, user.Role)
	}

	return nil
}

// seedCustomerCodes seeds a few starter mappings assigned to the first
// commercial user, so routing works out of the box in development
func (s *Seeder) seedCustomerCodes() error {
	var count int64
	s.db.Model(&models.CustomerCode{}).Count(&count)
	if count > 0 {
		return nil
	}

	var commercial models.User
	err := s.db.Where("role = ?", models.RoleCommercial).First(&commercial).Error
	if err != nil {
		return err
	}

	codes := []models.CustomerCode{
		{Code: "CUST001", Description: "Tech Corp", CommercialUserID: &commercial.ID, Status: models.CodeStatusActive},
		{Code: "CUST002", Description: "Logistics Ltd", CommercialUserID: &commercial.ID, Status: models.CodeStatusActive},
		{Code: "CUST003", Description: "Retail Inc", CommercialUserID: &commercial.ID, Status: models.CodeStatusActive},
	}

	for i := range codes {
		if err := s.db.Create(&codes[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d customer code mappings", len(codes))
	return nil
}
