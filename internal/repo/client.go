// Package repo is the persistence layer. Queries are built with the ent SQL
// builder and executed over a dialect.Driver, so the same code runs against a
// plain connection or inside a transaction.
package repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Querier is the set of queries available on a connection or a transaction.
type Querier interface {
	CreatePatient(ctx context.Context, p *Patient) error
	PatientByID(ctx context.Context, id int) (*Patient, error)
	PatientByUsername(ctx context.Context, username string) (*Patient, error)
	CountPatients(ctx context.Context) (int, error)
	UpdatePatientCredential(ctx context.Context, p *Patient) error

	CreateDoctor(ctx context.Context, d *Doctor) error
	DoctorByID(ctx context.Context, id int) (*Doctor, error)
	DoctorByUsername(ctx context.Context, username string) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]*Doctor, error)
	CountDoctors(ctx context.Context) (int, error)
	UpdateDoctorCredential(ctx context.Context, d *Doctor) error

	CreateDepartment(ctx context.Context, d *Department) error
	DepartmentByID(ctx context.Context, id int) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	AppointmentByID(ctx context.Context, id int) (*Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID int) ([]*Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID int) ([]*Appointment, error)
	CountAppointments(ctx context.Context) (int, error)
	SetAppointmentStatus(ctx context.Context, id int, status AppointmentStatus) error

	TreatmentByAppointment(ctx context.Context, appointmentID int) (*Treatment, error)
	CreateTreatment(ctx context.Context, t *Treatment) error
	UpdateTreatment(ctx context.Context, t *Treatment) error
}

// Store is what the services depend on: direct queries plus a transactional scope.
type Store interface {
	Querier
	WithTx(ctx context.Context, fn func(q Querier) error) error
}

// Client is the PostgreSQL-backed Store.
type Client struct {
	*queries
	driver dialect.Driver
}

var _ Store = (*Client)(nil)

// NewClient wraps an opened driver.
func NewClient(drv dialect.Driver) *Client {
	return &Client{
		queries: newQueries(drv, drv.Dialect()),
		driver:  drv,
	}
}

// WithTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or panics and committed otherwise.
func (c *Client) WithTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err = fn(newQueries(tx, c.driver.Dialect())); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ping checks that the database answers a trivial query.
func (c *Client) Ping(ctx context.Context) error {
	var rows entsql.Rows
	if err := c.driver.Query(ctx, "SELECT 1", []any{}, &rows); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return rows.Close()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.driver.Close()
}

type queries struct {
	conn dialect.ExecQuerier
	b    *entsql.DialectBuilder
}

func newQueries(conn dialect.ExecQuerier, name string) *queries {
	return &queries{conn: conn, b: entsql.Dialect(name)}
}

// query runs a select and hands the open rows to scan.
func (q *queries) query(ctx context.Context, sel interface{ Query() (string, []any) }, scan func(*entsql.Rows) error) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := q.conn.Query(ctx, query, args, &rows); err != nil {
		return wrapError(err)
	}
	defer rows.Close()

	if err := scan(&rows); err != nil {
		return err
	}
	return rows.Err()
}

// insert runs an INSERT ... RETURNING id and returns the generated id.
func (q *queries) insert(ctx context.Context, ins *entsql.InsertBuilder) (int, error) {
	var id int
	err := q.query(ctx, ins.Returning("id"), func(rows *entsql.Rows) error {
		if !rows.Next() {
			return fmt.Errorf("insert returned no id")
		}
		return rows.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// exec runs a statement and returns the number of affected rows.
func (q *queries) exec(ctx context.Context, stmt interface{ Query() (string, []any) }) (int64, error) {
	query, args := stmt.Query()
	var res entsql.Result
	if err := q.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}

func (q *queries) count(ctx context.Context, table string) (int, error) {
	t := q.b.Table(table)
	var n int
	err := q.query(ctx, q.b.Select(entsql.Count("*")).From(t), func(rows *entsql.Rows) error {
		if !rows.Next() {
			return fmt.Errorf("count %s: no rows", table)
		}
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
