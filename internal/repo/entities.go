package repo

import (
	"time"

	"github.com/Alijeyrad/hospital_backend/pkg/util/password"
)

// Patient is a self-registered subject. The administrator is a Patient with IsAdmin set.
type Patient struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`

	passhash string
}

// SetCredential stores the argon2id hash of plaintext.
func (p *Patient) SetCredential(plaintext string) error {
	h, err := password.Hash(plaintext)
	if err != nil {
		return err
	}
	p.passhash = h
	return nil
}

// VerifyCredential reports whether plaintext matches the stored hash.
func (p *Patient) VerifyCredential(plaintext string) bool {
	return verify(p.passhash, plaintext)
}

// PassHash returns the stored PHC string.
func (p *Patient) PassHash() string { return p.passhash }

// CredentialStale reports whether the hash predates the configured argon2id parameters.
func (p *Patient) CredentialStale() bool { return password.NeedsRehash(p.passhash) }

// Doctor is a subject provisioned by the administrator.
type Doctor struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	DepartmentID *int   `json:"department_id,omitempty"`

	passhash string
}

// SetCredential stores the argon2id hash of plaintext.
func (d *Doctor) SetCredential(plaintext string) error {
	h, err := password.Hash(plaintext)
	if err != nil {
		return err
	}
	d.passhash = h
	return nil
}

// VerifyCredential reports whether plaintext matches the stored hash.
func (d *Doctor) VerifyCredential(plaintext string) bool {
	return verify(d.passhash, plaintext)
}

// PassHash returns the stored PHC string.
func (d *Doctor) PassHash() string { return d.passhash }

func (d *Doctor) CredentialStale() bool { return password.NeedsRehash(d.passhash) }

type Department struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	DoctorsRegistered string `json:"doctors_registered"`
}

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
)

// Values lists the enum values in schema order.
func (AppointmentStatus) Values() []string {
	return []string{string(StatusPending), string(StatusCompleted)}
}

type Appointment struct {
	ID          int               `json:"id"`
	PatientID   int               `json:"patient_id"`
	DoctorID    int               `json:"doctor_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Status      AppointmentStatus `json:"status"`

	// Edges are filled by the list queries.
	Edges AppointmentEdges `json:"edges"`
}

type AppointmentEdges struct {
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

type Treatment struct {
	ID            int    `json:"id"`
	AppointmentID int    `json:"appointment_id"`
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
	Notes         string `json:"notes"`
}

func verify(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return password.Match(hash, plaintext)
}
