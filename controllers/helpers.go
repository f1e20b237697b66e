package controllers

import (
	stderrors "errors"
	"strconv"
	"strings"

	"lablinc/middleware"
	"lablinc/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON binds the body into input and writes a 400 on failure.
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		response.ValidationError(c, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !stderrors.As(err, &errs) {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "phone":
			msgs = append(msgs, fe.Field()+" must be a valid phone number")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of: "+fe.Param())
		case "min", "gte":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func queryFloat(c *gin.Context, name string) *float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, name string) *int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}

// currentUser reads the caller set by the auth middleware.
func currentUser(c *gin.Context) (uint, int, bool) {
	userID, role, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
	}
	return userID, role, ok
}
