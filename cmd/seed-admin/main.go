// seed-admin creates or reactivates an admin staff row and prints a bearer
// token for it, so cancel and preference endpoints can be exercised.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... API_SECRET=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

func main() {
	name := flag.String("name", "POS Admin", "staff name of the admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	db, err := config.ConnectDatabaseWithRetry(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}

	var staff models.Staff
	err = db.WithContext(ctx).Where("name = ? AND role = ?", *name, models.UserRoleAdmin).First(&staff).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		staff = models.Staff{Name: *name, Role: models.UserRoleAdmin, IsActive: true}
		if err := db.WithContext(ctx).Create(&staff).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin staff: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin staff: id=%d name=%q\n", staff.ID, staff.Name)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup staff: %v\n", err)
		os.Exit(1)
	default:
		if err := db.WithContext(ctx).Model(&staff).Update("is_active", true).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to reactivate admin staff: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Admin staff exists: id=%d name=%q\n", staff.ID, staff.Name)
	}

	token, err := utils.JwtGenerate(cfg.Auth.Secret, staff.ID, string(models.UserRoleAdmin), cfg.Auth.TokenHourLifespan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
