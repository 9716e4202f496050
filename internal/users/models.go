package users

import "github.com/JustinTDCT/mediacat/internal/models"

type CreateRequest struct {
	Username string          `json:"username" validate:"min=3,max=100"`
	Password string          `json:"password" validate:"min=8,max=200"`
	Role     models.UserRole `json:"role" validate:"required,enum"`
}

type PatchRequest struct {
	IsActive models.Optional[bool]            `json:"is_active" validate:"omitnil"`
	Role     models.Optional[models.UserRole] `json:"role" validate:"omitnil,enum"`
	Password models.Optional[string]          `json:"password" validate:"omitnil,min=8,max=200"`
}

// Patch is the set of columns an update may touch. A field is written only
// when its Set flag is true.
type Patch struct {
	IsActive     models.Optional[bool]
	Role         models.Optional[models.UserRole]
	PasswordHash models.Optional[string]
}

func (p Patch) Empty() bool {
	return !p.IsActive.Set && !p.Role.Set && !p.PasswordHash.Set
}
