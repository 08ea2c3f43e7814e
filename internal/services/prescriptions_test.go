package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

type prescriptionFixture struct {
	db     *gorm.DB
	doctor *models.Doctor
	record *models.MedicalRecord
}

func newPrescriptionFixture(t *testing.T) prescriptionFixture {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	appt := testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusCompleted)
	return prescriptionFixture{db: db, doctor: doctor, record: testutil.CreateRecord(t, db, appt)}
}

func stockOf(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var m models.Medicine
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.QuantityInStock
}

func TestCreatePrescriptionDecrementsOneUnitPerItem(t *testing.T) {
	f := newPrescriptionFixture(t)
	amoxil := testutil.CreateMedicine(t, f.db, "Amoxil", 100, 10, 2)
	panadol := testutil.CreateMedicine(t, f.db, "Panadol", 50, 5, 2)
	svc := NewPrescriptionService(f.db, quietLog())

	p := &models.Prescription{MedicalRecordID: f.record.ID, DoctorID: f.doctor.ID, SpecialInstructions: "after meals"}
	items := []models.PrescriptionItem{
		{MedicineID: amoxil.ID, Dosage: "500mg", Frequency: "twice daily", DurationDays: 7},
		{MedicineID: panadol.ID, Dosage: "1g", Frequency: "as needed", DurationDays: 3},
		{MedicineID: amoxil.ID, Dosage: "250mg", Frequency: "at night", DurationDays: 7},
	}
	require.NoError(t, svc.Create(context.Background(), p, items))

	assert.Equal(t, 8, stockOf(t, f.db, amoxil.ID))
	assert.Equal(t, 4, stockOf(t, f.db, panadol.ID))

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
	assert.Equal(t, f.doctor.ID, stored.DoctorID)
}

func TestCreatePrescriptionAllowsNegativeStock(t *testing.T) {
	f := newPrescriptionFixture(t)
	empty := testutil.CreateMedicine(t, f.db, "Brufen", 80, 0, 5)
	svc := NewPrescriptionService(f.db, quietLog())

	p := &models.Prescription{MedicalRecordID: f.record.ID, DoctorID: f.doctor.ID}
	require.NoError(t, svc.Create(context.Background(), p, []models.PrescriptionItem{{MedicineID: empty.ID, Dosage: "400mg"}}))
	assert.Equal(t, -1, stockOf(t, f.db, empty.ID))
}

func TestCreatePrescriptionKeepsItemForMissingMedicine(t *testing.T) {
	f := newPrescriptionFixture(t)
	svc := NewPrescriptionService(f.db, quietLog())

	missing := uuid.NewString()
	p := &models.Prescription{MedicalRecordID: f.record.ID, DoctorID: f.doctor.ID}
	require.NoError(t, svc.Create(context.Background(), p, []models.PrescriptionItem{{MedicineID: missing, Dosage: "5ml"}}))

	var count int64
	require.NoError(t, f.db.Model(&models.PrescriptionItem{}).Where("medicine_id = ?", missing).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, missing, stored.Items[0].MedicineID)
	assert.Nil(t, stored.Items[0].Medicine)
}

func TestForeignKeysEnforcedExceptItemMedicine(t *testing.T) {
	f := newPrescriptionFixture(t)

	var enabled int
	require.NoError(t, f.db.Raw("PRAGMA foreign_keys").Row().Scan(&enabled))
	assert.Equal(t, 1, enabled)
	assert.False(t, f.db.Migrator().HasConstraint(&models.PrescriptionItem{}, "fk_prescription_items_medicine"))

	orphan := &models.Prescription{MedicalRecordID: uuid.NewString(), DoctorID: f.doctor.ID}
	assert.Error(t, f.db.Omit(clause.Associations).Create(orphan).Error, "prescriptions must reference a medical record")

	p := &models.Prescription{MedicalRecordID: f.record.ID, DoctorID: f.doctor.ID}
	require.NoError(t, f.db.Omit(clause.Associations).Create(p).Error)
	item := &models.PrescriptionItem{PrescriptionID: p.ID, MedicineID: uuid.NewString(), Dosage: "5ml"}
	assert.NoError(t, f.db.Omit(clause.Associations).Create(item).Error, "items keep unknown medicines")
}

func TestCreatePrescriptionValidation(t *testing.T) {
	f := newPrescriptionFixture(t)
	med := testutil.CreateMedicine(t, f.db, "Amoxil", 100, 10, 2)
	svc := NewPrescriptionService(f.db, quietLog())
	ctx := context.Background()

	err := svc.Create(ctx, &models.Prescription{MedicalRecordID: f.record.ID}, nil)
	assert.ErrorIs(t, err, ErrNoPrescriptionItems)

	item := []models.PrescriptionItem{{MedicineID: med.ID}}
	err = svc.Create(ctx, &models.Prescription{MedicalRecordID: "missing"}, item)
	assert.ErrorIs(t, err, ErrNotFound)

	other := testutil.CreateDoctor(t, f.db, "other@example.com", 1500)
	err = svc.Create(ctx, &models.Prescription{MedicalRecordID: f.record.ID, DoctorID: other.ID}, item)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, 10, stockOf(t, f.db, med.ID), "rejected prescriptions leave stock alone")
}

func TestEstimateMedicineCostAndPatientListing(t *testing.T) {
	f := newPrescriptionFixture(t)
	amoxil := testutil.CreateMedicine(t, f.db, "Amoxil", 100, 10, 2)
	panadol := testutil.CreateMedicine(t, f.db, "Panadol", 50, 10, 2)
	svc := NewPrescriptionService(f.db, quietLog())
	ctx := context.Background()

	cost, err := svc.EstimateMedicineCost(ctx, f.record.ID)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())

	p := &models.Prescription{MedicalRecordID: f.record.ID}
	require.NoError(t, svc.Create(ctx, p, []models.PrescriptionItem{
		{MedicineID: amoxil.ID}, {MedicineID: panadol.ID}, {MedicineID: panadol.ID},
	}))

	cost, err = svc.EstimateMedicineCost(ctx, f.record.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(200)), cost.String())

	list, err := svc.ListForPatient(ctx, f.record.PatientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].MedicalRecord)
	assert.Equal(t, "pat@example.com", list[0].MedicalRecord.Patient.User.Email)

	byDoctor, err := svc.ListForDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	assert.Len(t, byDoctor, 1)
}
