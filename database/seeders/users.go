package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/authflow/app/repositories"
	"github.com/shashiranjanraj/authflow/app/services"
	"github.com/shashiranjanraj/authflow/pkg/flow"
)

// Demo accounts for local development. Re-running the seeder is a no-op.
var DemoUsers = []services.RegisterInput{
	{Name: "Demo Admin", Email: "admin@authflow.test", Password: "password", Role: string(flow.RoleAdmin)},
	{Name: "Demo Customer", Email: "customer@authflow.test", Password: "password", Role: string(flow.RoleCustomer)},
}

func init() {
	Register("users", SeedUsers)
}

func SeedUsers(ctx context.Context, db *gorm.DB) error {
	return seedAccounts(ctx, services.NewAccountService(repositories.NewUserRepository(db)))
}

func seedAccounts(ctx context.Context, accounts *services.AccountService) error {
	for _, in := range DemoUsers {
		if _, err := accounts.Register(ctx, in); err != nil && !errors.Is(err, services.ErrAccountExists) {
			return err
		}
	}
	return nil
}
