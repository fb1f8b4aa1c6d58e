package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeCacheError         ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"
)

// Vehicle module error codes.
const (
	ErrCodeVehicleValidation   ErrorCode = "VEH_001"
	ErrCodeVehicleYearInvalid  ErrorCode = "VEH_002"
	ErrCodeVehiclePriceInvalid ErrorCode = "VEH_003"
)

// Market analysis module error codes.
const (
	ErrCodeNoComparables     ErrorCode = "MKT_001"
	ErrCodeStatisticsInvalid ErrorCode = "MKT_002"
	ErrCodeCorpusEmpty       ErrorCode = "MKT_003"
	ErrCodeAnalysisFailed    ErrorCode = "MKT_004"
	ErrCodeFallbackFailed    ErrorCode = "MKT_005"
)

// Listing source error codes.
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeSourceParseError  ErrorCode = "SRC_002"
	ErrCodeSourceTimeout     ErrorCode = "SRC_003"
)

// Aliases kept short at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeValidation   = ErrCodeValidation
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeVehicleValidation:   http.StatusBadRequest,
	ErrCodeVehicleYearInvalid:  http.StatusBadRequest,
	ErrCodeVehiclePriceInvalid: http.StatusBadRequest,

	ErrCodeNoComparables:     http.StatusInternalServerError,
	ErrCodeStatisticsInvalid: http.StatusInternalServerError,
	ErrCodeCorpusEmpty:       http.StatusInternalServerError,
	ErrCodeAnalysisFailed:    http.StatusInternalServerError,
	ErrCodeFallbackFailed:    http.StatusInternalServerError,

	ErrCodeSourceUnavailable: http.StatusBadGateway,
	ErrCodeSourceParseError:  http.StatusBadGateway,
	ErrCodeSourceTimeout:     http.StatusGatewayTimeout,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeServiceUnavailable: "service unavailable",

	ErrCodeVehicleValidation:   "vehicle validation failed",
	ErrCodeVehicleYearInvalid:  "vehicle year out of plausible range",
	ErrCodeVehiclePriceInvalid: "vehicle price must be positive",

	ErrCodeNoComparables:     "no comparable vehicles found",
	ErrCodeStatisticsInvalid: "market statistics are not valid",
	ErrCodeCorpusEmpty:       "market corpus is empty",
	ErrCodeAnalysisFailed:    "price analysis failed",
	ErrCodeFallbackFailed:    "fallback estimation failed",

	ErrCodeSourceUnavailable: "listing source unavailable",
	ErrCodeSourceParseError:  "failed to parse listing source response",
	ErrCodeSourceTimeout:     "listing source timed out",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
