package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/kit/log"
	"github.com/mbeoliero/parley/pkg/errcode"
)

// Response represents a standard API response
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// Success sends a success response
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// Error sends an error response. Business errors keep their code and map to the
// status of their kind; anything else is reported as an internal error.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	e, ok := errcode.As(err)
	if !ok {
		log.CtxError(ctx, "unexpected error: %v", err)
		e = errcode.ErrInternalServer
	}
	ErrorWithCode(ctx, c, e)
}

// ErrorWithCode sends an error response with specific error code
func ErrorWithCode(ctx context.Context, c *app.RequestContext, e *errcode.Error) {
	c.JSON(e.Kind.HTTPStatus(), Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
