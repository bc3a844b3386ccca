package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"

	"github.com/xxxsen/fieldorder/internal/pkg/errcode"
	appErr "github.com/xxxsen/fieldorder/internal/pkg/errors"
)

// ShareUnavailableMessage is the single answer anonymous share visitors get
// for every dead, unknown or mismatched link.
const ShareUnavailableMessage = "link expired or invalid"

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}

var failures = []struct {
	err  error
	code int
	msg  string
}{
	{appErr.ErrUnauthorized, errcode.ErrUnauthorized, "unauthorized"},
	{appErr.ErrForbidden, errcode.ErrForbidden, "you do not have rights over this resource"},
	{appErr.ErrNotFound, errcode.ErrNotFound, "not found"},
	{appErr.ErrInvalid, errcode.ErrInvalid, "invalid request"},
	{appErr.ErrConflict, errcode.ErrConflict, "conflict"},
	{appErr.ErrTooMany, errcode.ErrTooMany, "too many requests"},
	{appErr.ErrShareUnavailable, errcode.ErrShareUnavailable, ShareUnavailableMessage},
}

// Fail writes the envelope for a domain error. Anything unrecognised is
// reported as internal without leaking its text.
func Fail(c *gin.Context, err error) {
	for _, item := range failures {
		if errors.Is(err, item.err) {
			Error(c, item.code, item.msg)
			return
		}
	}
	Error(c, errcode.ErrInternal, "internal error")
}

func ShareUnavailable(c *gin.Context) {
	Error(c, errcode.ErrShareUnavailable, ShareUnavailableMessage)
}
