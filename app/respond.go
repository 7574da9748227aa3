package app

import "github.com/gin-gonic/gin"

// Response is the body every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// OKList adds count, the length of the list.
func OKList(c *gin.Context, n int, data any) {
	c.JSON(200, Response{Success: true, Count: &n, Data: data})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: msg})
}
