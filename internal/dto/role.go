package dto

type RoleRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}
