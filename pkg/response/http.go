package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

const CodeError = "-1"

type codeMsg struct {
	Code    string
	Message string
}

func (c *codeMsg) Error() string {
	return fmt.Sprintf("code: %s, message: %s", c.Code, c.Message)
}

// NewError creates a new codeMsg.
func NewError(code string, msg string) error {
	return &codeMsg{Code: code, Message: msg}
}

type Response[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
}

func Error(c *gin.Context, httpStatusCode int, e error) {
	c.JSON(httpStatusCode, wrapResponse(e))
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, httpStatusCode int, e error) {
	c.AbortWithStatusJSON(httpStatusCode, wrapResponse(e))
}

func wrapResponse(e error) Response[any] {
	var resp Response[any]
	switch data := e.(type) {
	case *codeMsg:
		resp.Code = data.Code
		resp.Message = data.Message
	default:
		resp.Code = CodeError
		resp.Message = data.Error()
	}

	return resp
}
