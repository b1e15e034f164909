package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/services"
	"github.com/yeremiapane/photobooth-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const welcomeTimeout = 30 * time.Second

// WelcomeSender mengirim pesan sambutan satu kali setelah registrasi.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, userName string) (services.DeliveryResult, error)
}

type UserController struct {
	DB   *gorm.DB
	Mail WelcomeSender
	SMS  WelcomeSender
}

func NewUserController(db *gorm.DB, mail, sms WelcomeSender) *UserController {
	return &UserController{DB: db, Mail: mail, SMS: sms}
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}

// Register user baru
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required,min=6"`
		FullName string  `json:"full_name" binding:"required"`
		Phone    *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := utils.SanitizeText(req.FullName)
	if fullName == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("full_name is required"))
		return
	}

	var existing int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Email:    email,
		Password: string(hashed),
		FullName: fullName,
		Phone:    normalizePhone(req.Phone),
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s", user.Email)

	// Pesan sambutan tidak boleh menahan response registrasi
	go uc.sendWelcome(user)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"token": token,
		"user":  user,
	})
}

func (uc *UserController) sendWelcome(user models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
	defer cancel()

	if uc.Mail != nil {
		if _, err := uc.Mail.SendWelcome(ctx, user.Email, user.FullName); err != nil && !errors.Is(err, services.ErrMailDisabled) {
			utils.ErrorLogger.Printf("Welcome email to %s not sent: %v", user.Email, err)
		}
	}
	if uc.SMS != nil && user.HasPhone() {
		if _, err := uc.SMS.SendWelcome(ctx, *user.Phone, user.FullName); err != nil {
			utils.ErrorLogger.Printf("Welcome SMS to user %d not sent: %v", user.ID, err)
		}
	}
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s", user.Email)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout mencabut token yang sedang dipakai
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	if token == "" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("token not found in context"))
		return
	}

	var expiresAt time.Time
	if v, ok := c.Get(middlewares.ContextTokenExp); ok {
		expiresAt, _ = v.(time.Time)
	}
	utils.RevokeToken(token, expiresAt)

	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// UpdateProfile mengubah nama dan/atau nomor telepon. Phone kosong menghapus nomor.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	var req struct {
		FullName *string `json:"full_name"`
		Phone    *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		name := utils.SanitizeText(*req.FullName)
		if name == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("full_name cannot be empty"))
			return
		}
		updates["full_name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = normalizePhone(req.Phone)
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("nothing to update"))
		return
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Profile updated for user %d", user.ID)
	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}

type UserStats struct {
	RoomsCreated    int64 `json:"rooms_created"`
	RoomsJoined     int64 `json:"rooms_joined"`
	PhotosTaken     int64 `json:"photos_taken"`
	PhotosInLibrary int64 `json:"photos_in_library"`
}

func (uc *UserController) GetStats(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	var stats UserStats
	queries := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.Room{}, "created_by = ?", []interface{}{userID}, &stats.RoomsCreated},
		{&models.RoomParticipant{}, "user_id = ? AND is_active = ?", []interface{}{userID, true}, &stats.RoomsJoined},
		{&models.Photo{}, "user_id = ?", []interface{}{userID}, &stats.PhotosTaken},
		{&models.PhotoLibraryEntry{}, "user_id = ?", []interface{}{userID}, &stats.PhotosInLibrary},
	}
	for _, q := range queries {
		if err := uc.DB.Model(q.model).Where(q.where, q.args...).Count(q.dest).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "User stats", stats)
}
