package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/model"
)

// Error codes carried in Detail.Code
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Detail is the code and human text of a failed request
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Body is the JSON document of every non-2xx reply
type Body struct {
	Error Detail `json:"error"`
}

// Error pairs a Detail with the status it is served under
type Error struct {
	Status int
	Detail
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotFound = &Error{http.StatusNotFound, Detail{CodeNotFound, "Not found"}}
	ErrInternal = &Error{http.StatusInternalServerError, Detail{CodeInternalError, "Internal server error"}}
)

// InvalidRequest builds a 400 with the given message
func InvalidRequest(message string) *Error {
	return &Error{http.StatusBadRequest, Detail{CodeInvalidRequest, message}}
}

// domain sentinels that surface over HTTP; anything else is a 500
var domainErrors = []struct {
	target error
	status int
	code   string
}{
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrInvalidPayload, http.StatusBadRequest, CodeInvalidRequest},
}

// From classifies err into an Error
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			msg := model.ClientMessage(err)
			if d.code == CodeInvalidRequest {
				msg = "Invalid request"
			}
			return &Error{d.status, Detail{d.code, msg}}
		}
	}
	return ErrInternal
}

// Write serves err as a Body
func Write(w http.ResponseWriter, err error) {
	e := From(err)
	response.JSON(w, e.Status, Body{Error: e.Detail})
}

// NotFound answers unmatched routes
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Write(w, ErrNotFound)
}
