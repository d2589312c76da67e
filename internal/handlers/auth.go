package handlers

import (
	"tieba/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type registerRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=6"`
	Phone    *string `json:"phone"`
}

// Register 注册并直接登录
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	user, err := services.RegisterUser(req.Username, req.Password, req.Phone)
	if err != nil {
		Fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	_ = session.Save()

	Created(c, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录,写 session
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	user, err := services.AuthenticateUser(req.Username, req.Password, c.ClientIP())
	if err != nil {
		Fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	_ = session.Save()

	OK(c, user)
}

// Logout 清 session
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	OK(c, gin.H{"message": "logged out"})
}
