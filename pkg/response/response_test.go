package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, c *app.RequestContext) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(c.Response.Body(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c := app.NewContext(0)
	Success(context.Background(), c, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusOK, c.Response.StatusCode())
	resp := decode(t, c)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, map[string]interface{}{"id": "1"}, resp.Data)
}

func TestErrorMapsKindToStatus(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, errcode.ErrNotSender)

	assert.Equal(t, http.StatusForbidden, c.Response.StatusCode())
	resp := decode(t, c)
	assert.Equal(t, errcode.ErrNotSender.Code, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, errors.New("dial tcp: refused"))

	assert.Equal(t, http.StatusInternalServerError, c.Response.StatusCode())
	resp := decode(t, c)
	assert.Equal(t, errcode.ErrInternalServer.Code, resp.Code)
	assert.Equal(t, errcode.ErrInternalServer.Msg, resp.Msg)
}
