package domain

import (
	"time"
)

type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// AuthCookieName 是登录后保存 JWT 的 cookie 名称
const AuthCookieName = "__shift_board_token"
