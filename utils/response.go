package utils

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
)

// ExposeErrorDetails adds the underlying cause to error bodies. It is switched
// on in development only.
var ExposeErrorDetails bool

func RespondOK(c *gin.Context, status int, msg string, data any) {
	body := gin.H{"ok": true, "msg": msg}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func RespondWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "msg": msg})
}

// RespondWithAppError writes err using its kind as the HTTP status. Errors that
// are not AppErrors are reported as internal failures.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("Error en servidor", err)
	}

	body := gin.H{"ok": false, "msg": appErr.Message}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	if appErr.Kind == KindInternal {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr)
		if ExposeErrorDetails && appErr.Err != nil {
			body["detalle"] = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(appErr.Kind.Status(), body)
}
