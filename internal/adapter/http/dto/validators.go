package dto

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	downloadSlugRe  = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	publicOrderIDRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("download_slug", validateDownloadSlug)
		_ = v.RegisterValidation("public_order_id", validatePublicOrderID)
	}
}

func validateDownloadSlug(fl validator.FieldLevel) bool {
	return downloadSlugRe.MatchString(fl.Field().String())
}

// validatePublicOrderID allows url-safe characters only.
func validatePublicOrderID(fl validator.FieldLevel) bool {
	return publicOrderIDRe.MatchString(fl.Field().String())
}

// TrimStrings trims surrounding whitespace from every exported string field
// (including *string) of a struct pointer.
func TrimStrings(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Ptr:
			if !f.IsNil() && f.Elem().Kind() == reflect.String {
				f.Elem().SetString(strings.TrimSpace(f.Elem().String()))
			}
		}
	}
}
