package http

import (
	"net/http"

	"rangekv/pkg/cluster"
)

type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusSuccess indicates an operation completed successfully.
	StatusSuccess Status = "success"

	// StatusError indicates an operation failed.
	StatusError Status = "error"
)

// Response represents the public API response format.
type Response struct {
	Status Status `json:"status,omitempty"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewValueResponse(value string) Response {
	return Response{Status: StatusSuccess, Value: value}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}

// statusFor maps a routing failure kind to an HTTP status. The hop endpoint
// relies on the Kind field in the body, the status is for logs and curl.
func statusFor(kind cluster.ErrorKind) int {
	switch kind {
	case cluster.KindNone:
		return http.StatusOK
	case cluster.KindNotFound:
		return http.StatusNotFound
	case cluster.KindNoRoute:
		return http.StatusMisdirectedRequest
	case cluster.KindLoop:
		return http.StatusLoopDetected
	case cluster.KindSaturated:
		return http.StatusServiceUnavailable
	case cluster.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
