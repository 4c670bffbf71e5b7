package model

type Role struct {
	Base
	Name string `gorm:"size:100;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

func (Role) Fillables() []string {
	return []string{"id", "name", "slug", "status", "created_at", "updated_at"}
}

// SoftDelete is disabled for roles; deleting one removes the row.
func (Role) SoftDelete() bool {
	return false
}
