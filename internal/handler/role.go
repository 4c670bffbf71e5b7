package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/glowday/api/internal/dto"
	apperrors "github.com/glowday/api/internal/errors"
	"github.com/glowday/api/internal/model"
	"github.com/glowday/api/internal/service"
	"github.com/glowday/api/internal/validation"
)

type RoleHandler struct {
	*ResourceHandler[model.Role]
}

func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{
		ResourceHandler: NewResourceHandler(svc.CRUDService, decodeRole),
	}
}

func decodeRole(c *gin.Context) (*model.Role, error) {
	var req dto.RoleRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, apperrors.NewValidationError(validation.Messages(err)...)
	}
	return &model.Role{Name: req.Name}, nil
}
