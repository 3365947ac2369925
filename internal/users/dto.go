package users

import "time"

type registerRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=6,max=15"`
	Password  string `json:"password" validate:"required,min=8"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
}

type createRequest struct {
	registerRequest
	Role      string `json:"role" validate:"required,oneof=admin teacher student client"`
	Specialty string `json:"specialty" validate:"omitempty,max=100"`
}

type updateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Phone     string `json:"phone" validate:"required,min=6,max=15"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
}

type userResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	BirthDate string     `json:"birth_date"`
	Detail    RoleDetail `json:"detail"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		BirthDate: u.BirthDate.Format("2006-01-02"),
		Detail:    u.Detail(),
		CreatedAt: u.CreatedAt,
	}
}
