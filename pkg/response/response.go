// Package response defines the JSON error envelope shared by all API endpoints.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const StatusError = "error"

// Response is the envelope returned for every API error.
type Response struct {
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "Request body is invalid. Please check provided data.",
}

var InvalidURLResponse = Response{
	Status:  StatusError,
	Error:   "Invalid URL",
	Message: "The provided value is not a well-formed absolute URL.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

// ValidationErrorResponse builds an error envelope from validator errors,
// listing each failed field with a user-friendly message.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "Request body didn't pass validation. Please check provided data.",
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			resp.Details = append(resp.Details, ValidationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return resp
}

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	default:
		return "invalid value"
	}
}
