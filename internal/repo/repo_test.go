package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		drv := &fakeDriver{rows: [][]any{{7}}}
		c := NewClient(drv)

		err := c.WithTx(ctx, func(q Querier) error {
			return q.CreatePatient(ctx, &Patient{Username: "alice"})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, drv.committed)
		assert.Equal(t, 0, drv.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		drv := &fakeDriver{}
		c := NewClient(drv)
		boom := errors.New("boom")

		err := c.WithTx(ctx, func(Querier) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, drv.committed)
		assert.Equal(t, 1, drv.rolledBack)
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		drv := &fakeDriver{}
		c := NewClient(drv)

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = c.WithTx(ctx, func(Querier) error { panic("kaboom") })
		})
		assert.Equal(t, 1, drv.rolledBack)
	})
}

func TestCreatePatient(t *testing.T) {
	drv := &fakeDriver{rows: [][]any{{42}}}
	c := NewClient(drv)

	p := &Patient{Username: "alice", Name: "Alice"}
	require.NoError(t, p.SetCredential("s3cret"))
	require.NoError(t, c.CreatePatient(context.Background(), p))

	assert.Equal(t, 42, p.ID)
	assert.Contains(t, drv.lastQuery(), `INSERT INTO "patients"`)
	assert.Contains(t, drv.lastQuery(), `RETURNING "id"`)
	require.Len(t, drv.args, 1)
	assert.Equal(t, "alice", drv.args[0][0])
	assert.NotEqual(t, "s3cret", drv.args[0][1], "plaintext must never reach the database")
}

func TestPatientByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		seed := &Patient{}
		require.NoError(t, seed.SetCredential("pw"))

		drv := &fakeDriver{rows: [][]any{{1, "admin", seed.PassHash(), "Admin", true}}}
		p, err := NewClient(drv).PatientByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "Admin", p.Name)
		assert.True(t, p.IsAdmin)
		assert.True(t, p.VerifyCredential("pw"))
		assert.Contains(t, drv.lastQuery(), `WHERE "patients"."username" = $1`)
	})

	t.Run("missing", func(t *testing.T) {
		drv := &fakeDriver{}
		_, err := NewClient(drv).PatientByUsername(ctx, "ghost")
		assert.True(t, IsNotFound(err))
	})

	t.Run("null name", func(t *testing.T) {
		drv := &fakeDriver{rows: [][]any{{2, "bob", "x", nil, false}}}
		p, err := NewClient(drv).PatientByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, p.Name)
	})
}

func TestDoctorDepartmentNullable(t *testing.T) {
	ctx := context.Background()
	drv := &fakeDriver{rows: [][]any{
		{1, "house", "h", "House", nil},
		{2, "wilson", "h", "Wilson", int64(3)},
	}}

	docs, err := NewClient(drv).ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Nil(t, docs[0].DepartmentID)
	require.NotNil(t, docs[1].DepartmentID)
	assert.Equal(t, 3, *docs[1].DepartmentID)
}

func TestListAppointmentsByDoctor(t *testing.T) {
	when := time.Date(2030, 1, 2, 10, 30, 0, 0, time.UTC)
	drv := &fakeDriver{rows: [][]any{{5, 1, 2, when, "pending", "Alice", "House"}}}

	appts, err := NewClient(drv).ListAppointmentsByDoctor(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, StatusPending, appts[0].Status)
	assert.Equal(t, when, appts[0].ScheduledAt)
	assert.Equal(t, "Alice", appts[0].Edges.PatientName)
	assert.Equal(t, "House", appts[0].Edges.DoctorName)
	assert.Contains(t, drv.lastQuery(), "LEFT JOIN")
	assert.Contains(t, drv.lastQuery(), "ORDER BY")
}

func TestSetAppointmentStatus(t *testing.T) {
	ctx := context.Background()

	drv := &fakeDriver{affected: 1}
	require.NoError(t, NewClient(drv).SetAppointmentStatus(ctx, 9, StatusCompleted))
	assert.Contains(t, drv.lastQuery(), `UPDATE "appointments" SET "status" = $1`)

	drv = &fakeDriver{affected: 0}
	err := NewClient(drv).SetAppointmentStatus(ctx, 9, StatusCompleted)
	assert.True(t, IsNotFound(err))
}

func TestUpdateCredential(t *testing.T) {
	ctx := context.Background()

	drv := &fakeDriver{affected: 1}
	p := &Patient{ID: 4, passhash: "$argon2id$new"}
	require.NoError(t, NewClient(drv).UpdatePatientCredential(ctx, p))
	assert.Contains(t, drv.lastQuery(), `UPDATE "patients" SET "passhash" = $1 WHERE "id" = $2`)
	assert.Equal(t, []any{"$argon2id$new", 4}, drv.args[len(drv.args)-1])

	drv = &fakeDriver{affected: 1}
	require.NoError(t, NewClient(drv).UpdateDoctorCredential(ctx, &Doctor{ID: 5, passhash: "h"}))
	assert.Contains(t, drv.lastQuery(), `UPDATE "doctors" SET "passhash"`)

	drv = &fakeDriver{affected: 0}
	err := NewClient(drv).UpdateDoctorCredential(ctx, &Doctor{ID: 5})
	assert.True(t, IsNotFound(err))
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pq.Error{Code: uniqueViolation}, ErrDuplicate},
		{"foreign key", &pq.Error{Code: foreignKeyViolation}, ErrReference},
		{"wrapped unique", fmt.Errorf("exec: %w", &pq.Error{Code: uniqueViolation}), ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &fakeDriver{err: tt.err}
			err := NewClient(drv).CreateDoctor(context.Background(), &Doctor{Username: "x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	plain := errors.New("connection reset")
	assert.Equal(t, plain, wrapError(plain))
}

func TestSchema(t *testing.T) {
	assert.True(t, TreatmentsColumns[4].Unique, "one treatment per appointment")
	assert.True(t, PatientsColumns[1].Unique)
	assert.True(t, DoctorsColumns[1].Unique)
	assert.Equal(t, DepartmentsTable, DoctorsTable.ForeignKeys[0].RefTable)
	assert.Equal(t, AppointmentsTable, TreatmentsTable.ForeignKeys[0].RefTable)
	assert.Equal(t, []string{"pending", "completed"}, AppointmentsColumns[2].Enums)

	for i, tbl := range Tables {
		for _, fk := range tbl.ForeignKeys {
			var pos int
			for j, other := range Tables {
				if other == fk.RefTable {
					pos = j
				}
			}
			assert.Less(t, pos, i, "%s must be created after %s", tbl.Name, fk.RefTable.Name)
		}
	}
}

func TestCredentialNotExposed(t *testing.T) {
	d := &Doctor{Username: "house"}
	require.NoError(t, d.SetCredential("vicodin"))
	assert.True(t, d.VerifyCredential("vicodin"))
	assert.False(t, d.VerifyCredential("Vicodin"))
	assert.False(t, (&Doctor{}).VerifyCredential(""))
}
