package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Account Errors
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailNotFound      = errors.New("email not found")
	ErrResetTokenInvalid  = errors.New("invalid or expired token")
)

// Content & Engagement Errors
var (
	ErrInvalidDate        = errors.New("invalid date format")
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrProjectUnavailable = errors.New("project not found")
	ErrCommentInvalid     = errors.New("could not add comment")
)

// Mail & Storage Errors
var (
	ErrMailDelivery = errors.New("mail delivery failed")
	ErrUploadFailed = errors.New("upload failed")
)

// Account Error Constructors
func NewEmailTakenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    ErrEmailTaken.Error(),
		Field:      "email",
		Fields:     map[string]string{"email": "This email is already in use. Choose another one."},
		Cause:      ErrEmailTaken,
	}
}

func NewInvalidCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidCredentials,
	}
}

func NewEmailNotFoundError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrEmailNotFound,
		Field:      "email",
	}
}

func NewResetTokenInvalidError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrResetTokenInvalid,
		Field:      "token",
	}
}

// Content & Engagement Error Constructors
func NewInvalidDateError(value string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    fmt.Sprintf("%s %q, use YYYY-MM-DD", ErrInvalidDate.Error(), value),
		Field:      "date",
		Fields:     map[string]string{"date": "Invalid date format. Use YYYY-MM-DD."},
		Cause:      ErrInvalidDate,
	}
}

func NewUnsupportedImageError(filename string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    fmt.Sprintf("%s: %s", ErrUnsupportedImage.Error(), filename),
		Field:      "image",
		Fields:     map[string]string{"image": "Images only (jpg, jpeg, png)."},
		Cause:      ErrUnsupportedImage,
	}
}

func NewProjectUnavailableError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        tagged(ErrProjectUnavailable.Error(), ErrNotFound),
		Cause:      ErrProjectUnavailable,
	}
}

func NewCommentInvalidError(reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    reason,
		Field:      "content",
		Fields:     map[string]string{"content": ErrCommentInvalid.Error()},
		Cause:      ErrCommentInvalid,
	}
}

// Mail & Storage Error Constructors
func NewMailDeliveryError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrMailDelivery,
		Cause:      cause,
	}
}

func NewUploadFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrUploadFailed,
		Cause:      cause,
	}
}

// Type Checkers
func IsEmailTakenError(err error) bool {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) && errors.Is(apiErr.Cause, ErrEmailTaken) {
		return true
	}
	return errors.Is(err, ErrEmailTaken)
}

func IsInvalidCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsEmailNotFoundError(err error) bool {
	return errors.Is(err, ErrEmailNotFound)
}

func IsResetTokenInvalidError(err error) bool {
	return errors.Is(err, ErrResetTokenInvalid)
}

func IsInvalidDateError(err error) bool {
	var apiErr *ApiErr
	return errors.As(err, &apiErr) && errors.Is(apiErr.Cause, ErrInvalidDate)
}
