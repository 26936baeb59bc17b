package main

import (
	"os"
	"strings"

	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/internal/service"
	"go-restaurant-authz/pkg/config"
	"go-restaurant-authz/pkg/database"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/pflag"
)

func main() {
	var email, password string

	flagSet := pflag.NewFlagSet("reset-password", pflag.ContinueOnError)
	flagSet.StringVarP(&email, "email", "e", "", "email of the admin to reset")
	flagSet.StringVarP(&password, "password", "p", "", "new password (min 6 characters)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if email == "" || password == "" {
		flagSet.Usage()
		os.Exit(2)
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)

	// 3. Find Admin
	adminRepo := repository.NewAdminRepo(db)
	admin, err := adminRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		log.Fatalf("Admin %s not found: %v", email, err)
	}

	// 4. Update through the directory so the change is audited and open sessions end
	auditService, err := service.NewAuditService(repository.NewAuditRepo(db), nil)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}
	registryService := service.NewRegistryService(db, repository.NewPageRepo(db), adminRepo, auditService, nil, nil)
	adminService := service.NewAdminService(db, adminRepo, registryService, auditService, nil, nil)

	if _, err := adminService.UpdateAdmin(service.SystemActor, admin.ID, &service.UpdateAdminRequest{Password: &password}); err != nil {
		log.Fatalf("Failed to reset password: %v", err)
	}

	log.Infof("Password for %s has been reset", admin.Email)
}
