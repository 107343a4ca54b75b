package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"readshelf/internal/apperr"
	"readshelf/internal/middleware"
	"readshelf/internal/models"
	"readshelf/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError writes the {"success": false, "error": ...} envelope with the
// status of err's kind.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUpstream {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(kind.Status(), gin.H{"success": false, "error": apperr.PublicMessage(err)})
}

func respondOK(c *gin.Context, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	obj["success"] = true
	c.JSON(http.StatusOK, obj)
}

// currentUser is only used behind AuthRequired.
func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperr.Validation("invalid request: %v", err)
	}
	return nil
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// dbError maps gorm.ErrRecordNotFound to NotFound and wraps everything else.
func dbError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
