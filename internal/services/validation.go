package services

import "github.com/go-playground/validator/v10"

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

func isEmail(s string) bool { return validate.Var(s, "required,email") == nil }

func isURL(s string) bool { return validate.Var(s, "required,url") == nil }
