package authValidator

import (
	"eduhub/models"
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR"`
}

func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	if r.Role == "" {
		r.Role = models.RoleStudent
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
}

func (r *UpdateProfileRequest) Check() map[string]string {
	if r.Name == nil && r.Bio == nil && r.AvatarURL == nil {
		return map[string]string{"request": "Nothing to update!"}
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

func (r *ChangePasswordRequest) Check() map[string]string {
	if r.CurrentPassword != "" && r.CurrentPassword == r.NewPassword {
		return map[string]string{"new_password": "New password must differ from the current password!"}
	}
	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

type UserListQuery struct {
	Role   string `query:"role" validate:"omitempty,oneof=ADMIN INSTRUCTOR STUDENT"`
	Search string `query:"search" validate:"omitempty,max=100"`
}

func (r *UserListQuery) Normalize() {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.Search = strings.TrimSpace(r.Search)
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN INSTRUCTOR STUDENT"`
}

func (r *UpdateRoleRequest) Normalize() {
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

type BlockUserRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.BindBody[SignupRequest]("validatedSignup")
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.BindBody[LoginRequest]("validatedLogin")
}

func ForgotPassword() fiber.Handler {
	return validators.BindBody[ForgotPasswordRequest]("validatedForgotPassword")
}

func ResetPassword() fiber.Handler {
	return validators.BindBody[ResetPasswordRequest]("validatedResetPassword")
}

func UpdateProfile() fiber.Handler {
	return validators.BindBody[UpdateProfileRequest]("validatedProfile")
}

func ChangePassword() fiber.Handler {
	return validators.BindBody[ChangePasswordRequest]("validatedPassword")
}

func UserList() fiber.Handler {
	return validators.BindQuery[UserListQuery]("validatedUserList")
}

func UpdateRole() fiber.Handler {
	return validators.BindBody[UpdateRoleRequest]("validatedRole")
}

func BlockUser() fiber.Handler {
	return validators.BindBody[BlockUserRequest]("validatedBlock")
}

func UserParam() fiber.Handler {
	return validators.IDParam("id", "targetUserID", "User")
}
