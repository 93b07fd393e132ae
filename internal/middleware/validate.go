package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/go-playground/validator/v10"

	"github.com/mbeoliero/coursehub/pkg/errcode"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared request validator. Field names in messages
// are the json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// BindAndValidate binds the request into req and validates its struct tags
func BindAndValidate(c *app.RequestContext, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errcode.ErrInvalidParam.WithMsg("malformed request").Wrap(err)
	}
	if err := Validator().Struct(req); err != nil {
		return errcode.ErrInvalidParam.WithMsg(validationMessage(err)).Wrap(err)
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errcode.ErrInvalidParam.Msg
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}
