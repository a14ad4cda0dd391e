package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meridian-sms/config"
)

// pathID parses the ":id" path parameter. On failure it writes the 400
// response itself and returns false.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// firstOr404 loads a record by ID and maps gorm.ErrRecordNotFound to 404.
// Returns false when a response has already been written.
func firstOr404(c *gin.Context, dest interface{}, id uint, name string) bool {
	if err := config.DB.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": name + " not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + name})
		}
		return false
	}
	return true
}

// parseQueryUint parses a required numeric query parameter.
func parseQueryUint(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(v), err
}

// invalidateCache drops a cache key, if caching is enabled.
func invalidateCache(key string) {
	if config.RDB != nil {
		config.RDB.Del(config.Ctx, key)
	}
}
