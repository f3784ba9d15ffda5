package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, message string, data interface{}) {
	SuccessWithStatus(c, http.StatusOK, message, data)
}

func SuccessWithStatus(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

func Error(c *gin.Context, status int, code string, message string, err error) {
	resp := gin.H{"message": message, "code": code}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(status, resp)
}
