package staff

type SignInRequest struct {
	EmployeeID string `json:"employee_id" form:"employee_id"`
	Password   string `json:"password" form:"password"`
}

type CreateRequest struct {
	EmployeeID string `json:"employee_id" form:"employee_id" validate:"required,max=50"`
	Password   string `json:"password" form:"password" validate:"required,min=4"`
	Role       string `json:"role" form:"role"`
	FullName   string `json:"full_name" form:"full_name" validate:"required"`
	HourlyWage *int64 `json:"hourly_wage" form:"hourly_wage" validate:"omitempty,gte=0"`
}

type CreateResponse struct {
	ID         int    `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	HourlyWage *int64 `json:"hourly_wage"`
}
