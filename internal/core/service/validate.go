package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var nameRe = regexp.MustCompile(`^[A-Za-z\s]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// letters and spaces only; the stock "alpha" tag rejects spaces.
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	return v
}

// userForm is the validation shape shared by registration, admin add and
// admin update. Password is tagged omitempty so updates may leave it
// blank to keep the stored hash; required-ness is enforced by the caller
// via requirePassword.
type userForm struct {
	Name     string `validate:"required,min=3,alphaspace"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,numeric"`
	Password string `validate:"omitempty,min=6"`
}

// validateUserForm returns a field→message map, empty when the form is
// clean. Messages match what the signup page renders next to each field.
func validateUserForm(f userForm, requirePassword, requireImage, hasImage bool) map[string]string {
	fields := make(map[string]string)

	if err := validate.Struct(f); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				field, msg := fieldMessage(fe)
				if _, seen := fields[field]; !seen {
					fields[field] = msg
				}
			}
		} else {
			fields["form"] = err.Error()
		}
	}

	if requirePassword && f.Password == "" {
		fields["password"] = "Password must be at least 6 characters long"
	}
	if requireImage && !hasImage {
		fields["image"] = "Image is required"
	}

	return fields
}

func fieldMessage(fe validator.FieldError) (string, string) {
	switch fe.Field() {
	case "Name":
		switch fe.Tag() {
		case "required":
			return "name", "Name is required"
		case "min":
			return "name", "Name must be at least 3 characters long"
		default:
			return "name", "Name should only contain letters and spaces"
		}
	case "Email":
		return "email", "Enter a valid email"
	case "Phone":
		if fe.Tag() == "required" {
			return "phone", "Phone number is required"
		}
		return "phone", "Enter a valid phone number"
	case "Password":
		return "password", "Password must be at least 6 characters long"
	}
	return fe.Field(), fe.Field() + " failed validation (" + fe.Tag() + ")"
}
