package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vistara-hms/internal/database/models"
	"vistara-hms/internal/utils"
)

type UserHandler struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

func NewUserHandler(db *gorm.DB, tokenTTLHours int) *UserHandler {
	if tokenTTLHours <= 0 {
		tokenTTLHours = 24
	}
	return &UserHandler{
		db:       db,
		tokenTTL: time.Duration(tokenTTLHours) * time.Hour,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	RoleID    int32  `json:"role_id" binding:"required"`
	BranchID  *int64 `json:"branch_id,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userView is what the API exposes of a user row. The password hash
// never leaves this package.
type userView struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	RoleID    int32      `json:"role_id"`
	RoleName  string     `json:"role_name,omitempty"`
	BranchID  *int64     `json:"branch_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func viewOf(u models.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		RoleID:    u.RoleID,
		RoleName:  u.Role.RoleName,
		BranchID:  u.BranchID,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

// Register creates a staff account. Accounts start inactive until an
// admin enables them.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var role models.Role
	if err := h.db.Where("id = ?", req.RoleID).First(&role).Error; err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Role not found"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to hash password"))
		return
	}

	user := models.User{
		Username:  strings.ToLower(req.Username),
		Email:     strings.ToLower(req.Email),
		Password:  string(hash),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		RoleID:    req.RoleID,
		BranchID:  req.BranchID,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			c.JSON(http.StatusConflict, utils.ErrorResponse("Username or email already taken"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create user"))
		return
	}

	user.Role = role
	c.JSON(http.StatusCreated, utils.SuccessResponse("User registered", viewOf(user)))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var user models.User
	if err := h.db.Preload("Role").
		Where("username = ? OR email = ?", strings.ToLower(req.Username), strings.ToLower(req.Username)).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid credentials"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid credentials"))
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, utils.ErrorResponse("Account is not active"))
		return
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Username, user.BranchID, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to issue token"))
		return
	}

	now := time.Now()
	h.db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", now)

	c.JSON(http.StatusOK, utils.SuccessResponse("Login successful", gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       viewOf(user),
	}))
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Not authenticated"))
		return
	}

	var user models.User
	if err := h.db.Preload("Role").Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("User not found"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Profile", viewOf(user)))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	query := h.db.Preload("Role")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if err := query.Order("username asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewOf(u))
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Users", views))
}

// SetActive enables or disables an account.
func (h *UserHandler) SetActive(c *gin.Context) {
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	result := h.db.Model(&models.User{}).Where("id = ?", c.Param("id")).Update("is_active", req.IsActive)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update user"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("User not found"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("User updated", nil))
}
