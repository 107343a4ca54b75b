package handlers

import (
	"errors"
	"regexp"
	"strings"

	"readshelf/internal/apperr"
	"readshelf/internal/models"
	"readshelf/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// createUser 创建新用户的通用函数
func (h *AuthHandler) createUser(req RegisterRequest) (*models.User, error) {
	var count int64
	h.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return nil, apperr.Validation("username already taken")
	}

	var email *string
	if e := strings.TrimSpace(req.Email); e != "" {
		h.db.Model(&models.User{}).Where("email = ?", e).Count(&count)
		if count > 0 {
			return nil, apperr.Validation("email already registered")
		}
		email = &e
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	user := models.User{
		Username:    req.Username,
		Email:       email,
		Password:    hash,
		Role:        models.RoleUser,
		DisplayName: displayName,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if !usernamePattern.MatchString(req.Username) {
		respondError(c, apperr.Validation("username may only contain letters, digits, '_', '.' and '-'"))
		return
	}

	user, err := h.createUser(req)
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	respondOK(c, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.Unauthorized("invalid username or password"))
			return
		}
		respondError(c, err)
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		respondError(c, apperr.Unauthorized("invalid username or password"))
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	respondOK(c, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	respondOK(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("login required"))
		return
	}
	respondOK(c, gin.H{"user": user})
}
