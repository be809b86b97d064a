package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
)

// StatusForCode maps aggregate error codes onto HTTP statuses.
func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeInvalidState,
		domainagg.CodeOutOfOrder,
		domainagg.CodeAlreadySigned,
		domainagg.CodeAlreadyFinalized,
		domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeDependencyFailure:
		return http.StatusBadGateway
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAggregateError writes the error envelope for a workflow failure.
// Internal errors never leak their message.
func RespondAggregateError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusForCode(code)
	msg := "internal error"
	if err != nil && status != http.StatusInternalServerError {
		msg = messageOf(err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(code),
			Reason:  domainagg.ReasonOf(err),
		},
	})
}

func messageOf(err error) string {
	var aerr *domainagg.Error
	if errors.As(err, &aerr) && aerr.Message != "" {
		return aerr.Message
	}
	return err.Error()
}
