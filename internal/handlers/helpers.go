package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23505")
}

// isForeignKeyViolation reports whether err is a Postgres foreign key error.
// This happens when a request references a user row that no longer exists,
// typically because the JWT outlived the account.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23503")
}

// profileResponse builds the standard user payload returned by auth and
// profile endpoints. Driver capability is derived from car ownership.
func profileResponse(db *gorm.DB, user *models.User) gin.H {
	var carCount int64
	db.Model(&models.UserCar{}).Where("user_id = ?", user.ID).Count(&carCount)

	resp := user.PublicProfile()
	resp["email"] = user.Email
	resp["phoneNumber"] = user.PhoneNumber
	resp["isVerified"] = user.IsVerified
	resp["isDriver"] = carCount > 0
	return resp
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) uint {
	return c.GetUint("userId")
}
