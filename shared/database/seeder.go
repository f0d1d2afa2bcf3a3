package database

import (
	"log"

	"petrosmart-backend/shared/config"
	"petrosmart-backend/shared/database/models"
	utils "petrosmart-backend/shared/utils/auth"
)

// SeedDatabase seeds the fixed role set and the bootstrap super admin
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	rolesCreated, err := seedDefaultRoles()
	if err != nil {
		return err
	}

	if rolesCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles created)", rolesCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// seedDefaultRoles creates the fixed role enumeration
func seedDefaultRoles() (int, error) {
	defaultRoles := []models.Role{
		{Name: models.RoleSuperAdmin, DisplayName: "Super Admin", Description: "Full system access"},
		{Name: models.RoleAdmin, DisplayName: "Admin", Description: "Station owner with full management access"},
		{Name: models.RoleManager, DisplayName: "Manager", Description: "Station manager"},
		{Name: models.RoleStaff, DisplayName: "Staff", Description: "Station staff member"},
		{Name: models.RoleUser, DisplayName: "User", Description: "Standard user with limited access"},
		{Name: models.RoleGuest, DisplayName: "Guest", Description: "Read-only guest access"},
	}

	created := 0
	for _, role := range defaultRoles {
		var existing models.Role
		result := DB.Where("name = ?", role.Name).First(&existing)
		if result.Error != nil {
			if err := DB.Create(&role).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// CreateSuperAdminFromConfig creates the super admin using config values
func CreateSuperAdminFromConfig() error {
	cfg := config.GetConfig()
	return CreateSuperAdmin(cfg.SuperAdminEmail, cfg.SuperAdminPassword)
}

// CreateSuperAdmin provisions the bootstrap super admin account
func CreateSuperAdmin(email, password string) error {
	var existingUser models.User
	if err := DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Println("Super admin already exists")
		return nil
	}

	var superAdminRole models.Role
	if err := DB.Where("name = ?", models.RoleSuperAdmin).First(&superAdminRole).Error; err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	superAdmin := models.User{
		Username:      "superadmin",
		Email:         email,
		Password:      hashedPassword,
		FirstName:     "Super",
		LastName:      "Admin",
		EmailVerified: true,
		RoleID:        &superAdminRole.ID,
	}

	if err := DB.Create(&superAdmin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}
