package commands

import (
	"context"
	"database/sql"
	"log/slog"

	"attendance/console/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: staff.",
		Query: `
        CREATE TABLE IF NOT EXISTS staff (
            id serial primary key,
            employee_id text not null,
            password text not null,
            role text not null default 'STAFF' check (role in ('STAFF', 'ADMIN')),
            full_name text not null default '',
            hourly_wage bigint check (hourly_wage >= 0),
            created_at timestamptz default now(),
            created_by int references staff(id),
            updated_at timestamptz,
            updated_by int references staff(id),
            deleted_at timestamptz,
            deleted_by int references staff(id)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS staff_employee_id_key ON staff (employee_id) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       2,
		Description: "Create staff with employee_id: Admin01, password: 1",
		Query: `
        INSERT INTO staff(employee_id, role, full_name, password)
        SELECT 'Admin01', 'ADMIN', 'Administrator', '$2a$10$NKtnMwDPFSQLG6uOi4Zqheru5Ygbj9TWFHjpl478rRSaO5cJ9QuH2'
        WHERE NOT EXISTS (SELECT employee_id FROM staff WHERE employee_id = 'Admin01');`,
	},
	{
		Index:       3,
		Description: "Create table: store_info.",
		Query: `
        CREATE TABLE IF NOT EXISTS store_info (
            id serial primary key,
            store_name text not null,
            latitude double precision not null check (latitude between -90 and 90),
            longitude double precision not null check (longitude between -180 and 180),
            radius double precision not null default 100 check (radius >= 0),
            created_at timestamptz default now(),
            created_by int references staff(id),
            updated_at timestamptz,
            updated_by int references staff(id),
            deleted_at timestamptz,
            deleted_by int references staff(id)
        );`,
	},
	{
		Index:       4,
		Description: "Create table: attendance.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance (
            id serial primary key,
            staff_id int not null references staff(id),
            work_day date not null,
            total_hours numeric(4,2) not null default 0 check (total_hours between 0 and 13),
            status text not null default 'normal' check (status in ('normal', 'absence', 'holiday')),
            check_in_time timestamptz,
            check_out_time timestamptz,
            check_in_verified bool not null default false,
            check_out_verified bool not null default false,
            check_in_distance double precision,
            check_out_distance double precision,
            created_at timestamptz default now(),
            created_by int references staff(id),
            updated_at timestamptz,
            updated_by int references staff(id),
            deleted_at timestamptz,
            deleted_by int references staff(id),
            unique (staff_id, work_day)
        );`,
	},
	{
		Index:       5,
		Description: "Create table: attendance_log.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance_log (
            id serial primary key,
            staff_id int not null references staff(id),
            action text not null check (action in ('checkin', 'checkout')),
            latitude double precision not null,
            longitude double precision not null,
            distance double precision not null,
            verified bool not null,
            accepted bool not null,
            logged_at timestamptz not null default now()
        );
        CREATE INDEX IF NOT EXISTS attendance_log_staff_idx ON attendance_log (staff_id, logged_at);`,
	},
	{
		Index:       6,
		Description: "Create table: company_holiday.",
		Query: `
        CREATE TABLE IF NOT EXISTS company_holiday (
            id serial primary key,
            holiday_date date not null,
            description text not null default '',
            created_at timestamptz default now(),
            created_by int references staff(id),
            updated_at timestamptz,
            updated_by int references staff(id),
            deleted_at timestamptz,
            deleted_by int references staff(id)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS company_holiday_date_key ON company_holiday (holiday_date) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       7,
		Description: "Create table: payroll.",
		Query: `
        CREATE TABLE IF NOT EXISTS payroll (
            id serial primary key,
            staff_id int not null references staff(id),
            month text not null,
            gross_pay bigint not null,
            deductions bigint not null,
            net_pay bigint not null,
            breakdown jsonb not null,
            calculated_at timestamptz not null,
            calculated_by int references staff(id),
            unique (staff_id, month)
        );`,
	},
}

// MigrateUP applies every scheme newer than the recorded version. A scheme
// that failed earlier is retried first.
func MigrateUP(ctx context.Context, db *postgresql.Database, log *slog.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text)`); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	var (
		version int
		dirty   bool
		er      sql.NullString
	)
	err := db.QueryRowContext(ctx, `SELECT version, dirty, error FROM schema_migrations`).Scan(&version, &dirty, &er)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err = db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (0, false)`); err != nil {
			return errors.Wrap(err, "initialising schema_migrations")
		}
		version, dirty = 0, false
	} else if err != nil {
		return errors.Wrap(err, "reading schema_migrations")
	}

	if dirty {
		log.Warn("retrying failed migration", "version", version, "error", er.String)
		for _, s := range scheme {
			if s.Index != version {
				continue
			}
			if err := apply(ctx, db, s); err != nil {
				return err
			}
		}
	}

	for _, s := range scheme {
		if s.Index <= version {
			continue
		}
		if err := apply(ctx, db, s); err != nil {
			return err
		}
		log.Info("migrated", "version", s.Index, "description", s.Description)
	}

	return nil
}

func apply(ctx context.Context, db *postgresql.Database, s Scheme) error {
	if _, err := db.ExecContext(ctx, s.Query); err != nil {
		if _, uerr := db.ExecContext(ctx, `UPDATE schema_migrations SET error = ?, version = ?, dirty = true`, err.Error(), s.Index); uerr != nil {
			return errors.Wrapf(uerr, "recording failure of version %d", s.Index)
		}
		return errors.Wrapf(err, "migrate version %d", s.Index)
	}
	if _, err := db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = false, error = NULL`, s.Index); err != nil {
		return errors.Wrapf(err, "recording version %d", s.Index)
	}
	return nil
}
