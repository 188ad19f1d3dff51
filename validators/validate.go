package validators

import (
	"eduhub/middleware"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// normalizer is implemented by requests that trim or default their fields before validation
type normalizer interface {
	Normalize()
}

// checker is implemented by requests with rules the struct tags cannot express
type checker interface {
	Check() map[string]string
}

// ValidateStruct runs the struct tag rules and the request's own checks and
// returns a field -> message map, empty when the request is valid.
func ValidateStruct(req interface{}) map[string]string {
	errs := make(map[string]string)

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if _, exists := errs[fe.Field()]; !exists {
					errs[fe.Field()] = fieldMessage(fe)
				}
			}
		} else {
			errs["request"] = "Invalid request!"
		}
	}

	if c, ok := req.(checker); ok {
		for field, msg := range c.Check() {
			if _, exists := errs[field]; !exists {
				errs[field] = msg
			}
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	label := humanize(fe.Field())
	isText := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return label + " is required!"
	case "email":
		return "Invalid email!"
	case "url":
		return label + " must be a valid URL!"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s!", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		if isText {
			return fmt.Sprintf("%s must be exactly %s characters long!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be %s!", label, fe.Param())
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters long!", label, fe.Param())
		}
		if isList {
			return fmt.Sprintf("%s must contain at least %s items!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", label, fe.Param())
	case "max", "lte":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters long!", label, fe.Param())
		}
		if isList {
			return fmt.Sprintf("%s must contain at most %s items!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", label, fe.Param())
	default:
		return label + " is invalid!"
	}
}

// humanize turns "passing_score" into "Passing score"
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// BindBody parses the JSON body into a T, validates it and stores it under local
func BindBody[T any](local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		return store(c, local, reqData)
	}
}

// BindQuery parses the query string into a T, validates it and stores it under local
func BindQuery[T any](local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		return store(c, local, reqData)
	}
}

func store(c *fiber.Ctx, local string, reqData interface{}) error {
	if n, ok := reqData.(normalizer); ok {
		n.Normalize()
	}
	if errs := ValidateStruct(reqData); len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}
	c.Locals(local, reqData)
	return c.Next()
}

// Get returns the request stored by BindBody or BindQuery
func Get[T any](c *fiber.Ctx, local string) (*T, bool) {
	reqData, ok := c.Locals(local).(*T)
	return reqData, ok
}

func BadRequest(c *fiber.Ctx, message string) error {
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, message, nil)
}

// IDParam validates a positive integer route parameter and stores it as uint under local
func IDParam(param, local, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" ID is required!", nil)
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}

		c.Locals(local, uint(id))
		return c.Next()
	}
}

// ID returns a route parameter stored by IDParam
func ID(c *fiber.Ctx, local string) uint {
	id, _ := c.Locals(local).(uint)
	return id
}

// Pagination is the page/limit pair shared by list endpoints
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Offset is the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block of list responses
func (p Pagination) Meta(total int64) fiber.Map {
	return fiber.Map{
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}

// Paginate validates the optional page and limit query parameters
func Paginate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Pagination{Page: 1, Limit: defaultLimit}
		errs := make(map[string]string)

		if raw := c.Query("page"); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil || page < 1 {
				errs["page"] = "Page must be greater than 0!"
			} else {
				p.Page = page
			}
		}

		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				errs["limit"] = "Limit must be greater than 0!"
			} else if limit > maxLimit {
				errs["limit"] = fmt.Sprintf("Limit must be at most %d!", maxLimit)
			} else {
				p.Limit = limit
			}
		}

		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("pagination", p)
		return c.Next()
	}
}

// GetPagination returns the pagination stored by Paginate, or the defaults
func GetPagination(c *fiber.Ctx) Pagination {
	if p, ok := c.Locals("pagination").(Pagination); ok {
		return p
	}
	return Pagination{Page: 1, Limit: defaultLimit}
}

// RangeQuery selects the reporting window of dashboards
type RangeQuery struct {
	Range string `query:"range" validate:"omitempty,oneof=today week month year all"`
	From  string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (r *RangeQuery) Normalize() {
	r.Range = strings.ToLower(strings.TrimSpace(r.Range))
}

func (r *RangeQuery) Check() map[string]string {
	if (r.From == "") != (r.To == "") {
		return map[string]string{"from": "Both from and to are required for a custom range!"}
	}
	return nil
}

// DateRange validates the dashboard range query
func DateRange() fiber.Handler {
	return BindQuery[RangeQuery]("validatedRange")
}
