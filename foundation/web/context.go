package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context carries the gin request context plus the request scoped
// context.Context that middleware may enrich.
type Context struct {
	*gin.Context
	Ctx     context.Context
	TraceID string

	log       *slog.Logger
	paramErrs []string
	queryErrs []string
}

// GetParam reads a path parameter converted to kind. Conversion failures are
// collected and reported by ValidParam; the zero value is returned for them.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.paramErrs = append(c.paramErrs, fmt.Sprintf("%s must be an integer", name))
			return 0
		}
		return v
	case reflect.String:
		if raw == "" {
			c.paramErrs = append(c.paramErrs, fmt.Sprintf("%s is required", name))
		}
		return raw
	default:
		c.paramErrs = append(c.paramErrs, fmt.Sprintf("%s: unsupported kind %s", name, kind))
		return nil
	}
}

// ValidParam reports the failures collected by GetParam.
func (c *Context) ValidParam() error {
	if len(c.paramErrs) == 0 {
		return nil
	}
	return NewRequestError(errors.New(strings.Join(c.paramErrs, "; ")), http.StatusBadRequest)
}

// GetQueryFunc reads an optional query value converted to kind and returns a
// pointer to it, or nil when the key is absent.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s must be an integer", name))
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s must be a boolean", name))
			return nil
		}
		return &v
	case reflect.String:
		return &raw
	default:
		c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s: unsupported kind %s", name, kind))
		return nil
	}
}

// RequiredQuery is GetQueryFunc for a mandatory string value.
func (c *Context) RequiredQuery(name string) string {
	raw := c.Query(name)
	if raw == "" {
		c.queryErrs = append(c.queryErrs, fmt.Sprintf("%s parameter is required", name))
	}
	return raw
}

// ValidQuery reports the failures collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	if len(c.queryErrs) == 0 {
		return nil
	}
	return NewRequestError(errors.New(strings.Join(c.queryErrs, "; ")), http.StatusBadRequest)
}

// BindFunc decodes the request body into dst and checks that the named
// fields are set. A name may hold several comma separated fields.
func (c *Context) BindFunc(dst interface{}, required ...string) error {
	if err := c.ShouldBind(dst); err != nil {
		return NewRequestError(errors.Wrap(err, "decoding request"), http.StatusBadRequest)
	}

	v := reflect.Indirect(reflect.ValueOf(dst))
	if v.Kind() != reflect.Struct {
		return nil
	}

	var missing []string
	for _, group := range required {
		for _, name := range strings.Split(group, ",") {
			name = strings.TrimSpace(name)
			f := v.FieldByName(name)
			if !f.IsValid() || f.IsZero() {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return NewRequestError(fmt.Errorf("required fields missing: %s", strings.Join(missing, ", ")), http.StatusBadRequest)
	}

	return nil
}

// Respond writes data as JSON with the given status.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}
	c.JSON(status, data)
	return nil
}

// RespondError writes err using the error envelope. Errors that are not
// request errors are logged and reported as 500.
func (c *Context) RespondError(err error) error {
	var re *Error
	if errors.As(err, &re) {
		if re.Status >= http.StatusInternalServerError {
			c.log.Error("request failed", "trace_id", c.TraceID, "status", re.Status, "error", re.Err)
		}
		c.JSON(re.Status, errorBody(re.Error(), re.Extra))
		return nil
	}

	c.log.Error("request failed", "trace_id", c.TraceID, "error", err)
	c.JSON(http.StatusInternalServerError, errorBody(http.StatusText(http.StatusInternalServerError), nil))
	return nil
}

// RespondFile writes b as an attachment.
func (c *Context) RespondFile(name string, contentType string, b []byte) error {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, b)
	return nil
}
