package service

import (
	"context"

	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/repository"
	"gorm.io/gorm"
)

// RoleService is the plain CRUD lifecycle configured for roles: listings hide
// the seeded super-admin role and come back name-descending, and deletes are
// hard.
type RoleService struct {
	*CRUDService[model.Role]
}

func NewRoleService(db *gorm.DB) *RoleService {
	store := repository.NewStore[model.Role](db, repository.Config{
		Fillables:  model.Role{}.Fillables(),
		SoftDelete: model.Role{}.SoftDelete(),
	})
	return &RoleService{
		CRUDService: NewCRUDService(store, Hooks[model.Role]{
			BeforeList: func(ctx context.Context, query *gorm.DB) *gorm.DB {
				return query.Where("name <> ?", model.RoleSuperAdmin).Order("name DESC")
			},
		}),
	}
}
