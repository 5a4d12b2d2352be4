package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report errors under the html form field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// validateForm runs the struct tags of form and turns failures into messages.
func validateForm(form any) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs["_"] = "Invalid form data."
		return errs
	}
	for _, fe := range ves {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = fieldMessage(fe)
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	case "numeric":
		return "Must be a number."
	case "gt", "gte":
		return "Must not be negative."
	default:
		return "Invalid value."
	}
}

type CheckoutForm struct {
	FirstName      string `form:"first_name" validate:"required,max=100"`
	LastName       string `form:"last_name" validate:"required,max=100"`
	Phone          string `form:"phone" validate:"required,max=30"`
	Email          string `form:"email" validate:"required,email,max=254"`
	AddressLine    string `form:"address_line" validate:"required,max=250"`
	DeliveryTypeID int64  `form:"delivery_type_id" validate:"required,gt=0"`
}

type RegisterForm struct {
	FirstName       string `form:"first_name" validate:"required,max=100"`
	LastName        string `form:"last_name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type ContactForm struct {
	Text string `form:"text" validate:"required,max=2000"`
}

type ProductForm struct {
	ID          int64  `form:"id"`
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
	Price       string `form:"price" validate:"required,numeric"`
	StockQty    int    `form:"stock_qty" validate:"gte=0"`
}

type CategoryForm struct {
	Name string `form:"name" validate:"required,max=100"`
}

type DeliveryTypeForm struct {
	ID          int64  `form:"id"`
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"max=500"`
	Price       string `form:"price" validate:"required,numeric"`
	IsActive    bool   `form:"is_active"`
}

type UserEditForm struct {
	FirstName       string `form:"first_name" validate:"required,max=100"`
	LastName        string `form:"last_name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email,max=254"`
	IsAdmin         bool   `form:"is_admin"`
	Password        string `form:"password" validate:"omitempty,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}
