package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeValidation         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeCacheError         ErrorCode = "COMMON_007"
	ErrCodeUnknown            ErrorCode = "COMMON_999"

	// CodeOK is returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Market / snapshot error codes.
const (
	ErrCodeZipNotFound    ErrorCode = "MKT_001"
	ErrCodeNoGeoData      ErrorCode = "MKT_002"
	ErrCodeSnapshotLoad   ErrorCode = "MKT_003"
	ErrCodeSnapshotEmpty  ErrorCode = "MKT_004"
	ErrCodeDatasetMissing ErrorCode = "MKT_005"
)

// Recommendation / concept error codes.
const (
	ErrCodeUnknownCuisine ErrorCode = "REC_001"
	ErrCodeInvalidConcept ErrorCode = "REC_002"
)

// Survival model error codes.
const (
	ErrCodeModelUnavailable ErrorCode = "ML_001"
	ErrCodeModelBadOutput   ErrorCode = "ML_002"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,

	ErrCodeZipNotFound:    http.StatusNotFound,
	ErrCodeNoGeoData:      http.StatusNotFound,
	ErrCodeSnapshotLoad:   http.StatusInternalServerError,
	ErrCodeSnapshotEmpty:  http.StatusServiceUnavailable,
	ErrCodeDatasetMissing: http.StatusInternalServerError,

	ErrCodeUnknownCuisine: http.StatusBadRequest,
	ErrCodeInvalidConcept: http.StatusBadRequest,

	ErrCodeModelUnavailable: http.StatusServiceUnavailable,
	ErrCodeModelBadOutput:   http.StatusBadGateway,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the ErrorCode maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}
