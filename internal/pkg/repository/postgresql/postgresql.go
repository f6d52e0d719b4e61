// Package postgresql wraps the bun database handle shared by the
// repositories.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/pkg/config"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type Database struct {
	*bun.DB
	validate *validator.Validate
}

// New opens the postgres connection described by cfg. Queries are logged
// when debug is set.
func New(cfg *config.Config, debug bool) (*Database, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(net.JoinHostPort(cfg.DBHost, cfg.DBPort)),
		pgdriver.WithUser(cfg.DBUsername),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(cfg.DisableTLS),
		pgdriver.WithTimeout(5*time.Second),
	)

	db := bun.NewDB(sql.OpenDB(connector), pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened bun handle.
func NewWithDB(db *bun.DB) *Database {
	return &Database{DB: db, validate: validator.New()}
}

// CheckClaims returns the request claims, requiring one of roles when any
// are given.
func (d Database) CheckClaims(ctx context.Context, roles ...string) (auth.Claims, error) {
	claims, err := auth.GetClaims(ctx)
	if err != nil {
		return auth.Claims{}, err
	}
	if len(roles) > 0 && !claims.Authorized(roles...) {
		return auth.Claims{}, web.NewRequestError(errors.New("attempted action is not allowed"), http.StatusForbidden)
	}
	return claims, nil
}

// ValidateStruct checks that the named fields of s are set and then runs the
// validate tags of s.
func (d Database) ValidateStruct(s interface{}, requiredFields ...string) error {
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return web.NewRequestError(errors.New("validating a non struct value"), http.StatusInternalServerError)
	}

	var missing []string
	for _, name := range requiredFields {
		f := fieldByName(v, name)
		if !f.IsValid() || f.IsZero() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return web.NewRequestError(errors.Errorf("required fields missing: %s", strings.Join(missing, ", ")), http.StatusBadRequest)
	}

	if err := d.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return web.NewRequestError(errors.Wrap(err, "validating request"), http.StatusBadRequest)
		}
		fields := make(map[string]interface{}, len(verrs))
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return web.NewRequestErrorWith(errors.New(strings.Join(msgs, "; ")), http.StatusBadRequest, map[string]interface{}{"fields": fields})
	}

	return nil
}

// fieldByName finds a field by Go name or json tag.
func fieldByName(v reflect.Value, name string) reflect.Value {
	if f := v.FieldByName(name); f.IsValid() {
		return f
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// DeleteRow soft deletes the row id of table.
func (d Database) DeleteRow(ctx context.Context, table string, id int) error {
	claims, err := d.CheckClaims(ctx)
	if err != nil {
		return err
	}

	res, err := d.NewUpdate().
		Table(table).
		Set("deleted_at = ?", time.Now()).
		Set("deleted_by = ?", claims.UserId).
		Where("id = ? AND deleted_at IS NULL", id).
		Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrapf(err, "deleting %s", table), http.StatusInternalServerError)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return web.NewRequestError(errors.Errorf("%s %d not found", table, id), http.StatusNotFound)
	}
	return nil
}
