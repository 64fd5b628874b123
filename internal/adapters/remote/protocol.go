package remote

import (
	"encoding/json"
	"errors"

	"jade/internal/domain"
	"jade/internal/ports"
)

// Operations understood by a graph server
const (
	OpGetPackages  = "get_packages"
	OpAddPackage   = "add_package"
	OpAddObjects   = "add_objects"
	OpUpdateObject = "update_object"
	OpGetObject    = "get_object"
	OpQuery        = "query"
	OpSubscribe    = "subscribe"
	OpUnsubscribe  = "unsubscribe"
)

// Frame types sent by the server
const (
	FrameResponse = "response"
	FrameEvent    = "event"
	// FrameResync follows dropped events; every subscription on the
	// connection must re-read its objects.
	FrameResync = "resync"
)

// BrowserParam is the query parameter identifying the connecting client
const BrowserParam = "browser"

// Request is a client-to-server call
type Request struct {
	ID     uint64          `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Frame is a server-to-client message: a response to a Request or a pushed event
type Frame struct {
	Type         string              `json:"type"`
	ID           uint64              `json:"id,omitempty"`
	Result       json.RawMessage     `json:"result,omitempty"`
	Error        *WireError          `json:"error,omitempty"`
	Subscription string              `json:"subscription,omitempty"`
	Event        *domain.ObjectEvent `json:"event,omitempty"`
}

// Request parameter payloads

type GetPackagesParams struct {
	Names []string `json:"names"`
}

type AddPackageParams struct {
	Package domain.Package `json:"package"`
}

type AddObjectsParams struct {
	Schema string              `json:"schema"`
	Batch  []map[string]string `json:"batch"`
}

type UpdateObjectParams struct {
	UID    string            `json:"uid"`
	Fields map[string]string `json:"fields"`
}

type GetObjectParams struct {
	UID string `json:"uid"`
}

type QueryParams struct {
	Query domain.Query `json:"query"`
}

// SubscribeParams carries a client-chosen subscription ID, so the client can
// route events that arrive before the response.
type SubscribeParams struct {
	Subscription string       `json:"subscription"`
	Query        domain.Query `json:"query"`
}

type UnsubscribeParams struct {
	Subscription string `json:"subscription"`
}

// Error codes carried over the wire
const (
	CodeUnknownSchema   = "unknown_schema"
	CodeUniqueViolation = "unique_violation"
	CodeObjectNotFound  = "object_not_found"
	CodeUnknownField    = "unknown_field"
	CodeClosed          = "closed"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

var codeErrors = map[string]error{
	CodeUnknownSchema:   ports.ErrUnknownSchema,
	CodeUniqueViolation: ports.ErrUniqueViolation,
	CodeObjectNotFound:  ports.ErrObjectNotFound,
	CodeUnknownField:    ports.ErrUnknownField,
	CodeClosed:          ports.ErrStoreClosed,
}

// WireError is an error reported by the server
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *WireError) Error() string {
	return e.Message
}

// Unwrap exposes the store sentinel matching the code, so errors.Is works
// across the connection.
func (e *WireError) Unwrap() error {
	return codeErrors[e.Code]
}

// EncodeError converts a store error into its wire form
func EncodeError(err error) *WireError {
	if err == nil {
		return nil
	}
	for code, sentinel := range codeErrors {
		if errors.Is(err, sentinel) {
			return &WireError{Code: code, Message: err.Error()}
		}
	}
	return &WireError{Code: CodeInternal, Message: err.Error()}
}
