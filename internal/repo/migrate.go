package repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// DepartmentsColumns holds the columns for the "departments" table.
	DepartmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "doctors_registered", Type: field.TypeString, Nullable: true, Size: 64},
	}
	// DepartmentsTable holds the schema information for the "departments" table.
	DepartmentsTable = &schema.Table{
		Name:       "departments",
		Columns:    DepartmentsColumns,
		PrimaryKey: []*schema.Column{DepartmentsColumns[0]},
	}
	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 32},
		{Name: "passhash", Type: field.TypeString, Size: 512},
		{Name: "name", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "is_admin", Type: field.TypeBool, Default: false},
	}
	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
	}
	// DoctorsColumns holds the columns for the "doctors" table.
	DoctorsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 32},
		{Name: "passhash", Type: field.TypeString, Size: 512},
		{Name: "name", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "department_id", Type: field.TypeInt, Nullable: true},
	}
	// DoctorsTable holds the schema information for the "doctors" table.
	DoctorsTable = &schema.Table{
		Name:       "doctors",
		Columns:    DoctorsColumns,
		PrimaryKey: []*schema.Column{DoctorsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "doctors_departments_doctors",
				Columns:    []*schema.Column{DoctorsColumns[4]},
				RefColumns: []*schema.Column{DepartmentsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}
	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "scheduled_at", Type: field.TypeTime},
		{Name: "status", Type: field.TypeEnum, Enums: StatusPending.Values(), Default: string(StatusPending)},
		{Name: "patient_id", Type: field.TypeInt},
		{Name: "doctor_id", Type: field.TypeInt},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_patients_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[3]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_doctors_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[4]},
				RefColumns: []*schema.Column{DoctorsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "appointment_doctor_id_scheduled_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[4], AppointmentsColumns[1]},
			},
			{
				Name:    "appointment_patient_id_scheduled_at",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[3], AppointmentsColumns[1]},
			},
		},
	}
	// TreatmentsColumns holds the columns for the "treatments" table.
	TreatmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "diagnosis", Type: field.TypeString, Nullable: true, Size: 256},
		{Name: "prescription", Type: field.TypeString, Nullable: true, Size: 256},
		{Name: "notes", Type: field.TypeString, Nullable: true, Size: 512},
		{Name: "appointment_id", Type: field.TypeInt, Unique: true},
	}
	// TreatmentsTable holds the schema information for the "treatments" table.
	TreatmentsTable = &schema.Table{
		Name:       "treatments",
		Columns:    TreatmentsColumns,
		PrimaryKey: []*schema.Column{TreatmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "treatments_appointments_treatment",
				Columns:    []*schema.Column{TreatmentsColumns[4]},
				RefColumns: []*schema.Column{AppointmentsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// Tables holds all the tables in the schema, referenced tables first.
	Tables = []*schema.Table{
		DepartmentsTable,
		PatientsTable,
		DoctorsTable,
		AppointmentsTable,
		TreatmentsTable,
	}
)

func init() {
	DoctorsTable.ForeignKeys[0].RefTable = DepartmentsTable
	AppointmentsTable.ForeignKeys[0].RefTable = PatientsTable
	AppointmentsTable.ForeignKeys[1].RefTable = DoctorsTable
	TreatmentsTable.ForeignKeys[0].RefTable = AppointmentsTable
}

// Migrate creates missing tables, columns and indexes. Nothing is dropped.
func (c *Client) Migrate(ctx context.Context, opts ...schema.MigrateOption) error {
	m, err := schema.NewMigrate(c.driver, opts...)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: create schema: %w", err)
	}
	return nil
}
