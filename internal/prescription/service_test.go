// AngelaMos | 2026
// service_test.go

package prescription_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/testdb"
	"github.com/carterperez-dev/medassist/internal/user"
)

type env struct {
	db    *core.Database
	users *user.Service
	svc   *prescription.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testdb.New(t)
	users := user.NewService(db, user.Policy{MinPasswordLength: 6})
	return &env{
		db:    db,
		users: users,
		svc:   prescription.NewService(db, users),
	}
}

func (e *env) account(t *testing.T, email string, approved bool) *user.User {
	t.Helper()
	ctx := context.Background()

	u, err := e.users.Signup(ctx, user.SignupRequest{
		Name:     "Doctor",
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)

	if approved {
		u.SetStatus(user.StatusApproved, time.Now().UTC())
		require.NoError(t, user.NewRepository(e.db).Update(ctx, u))
	}
	return u
}

func TestCreate_RequiresApprovedOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	pending := e.account(t, "pending@x.com", false)
	_, err := e.svc.Create(ctx, pending.ID, prescription.CreateRequest{})
	assert.ErrorIs(t, err, prescription.ErrNotApproved)

	_, err = e.svc.List(ctx, pending.ID)
	assert.ErrorIs(t, err, prescription.ErrNotApproved)

	_, err = e.svc.Create(ctx, 999999, prescription.CreateRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	approved := e.account(t, "ok@x.com", true)
	_, err = e.users.SelfDelete(ctx, approved.ID)
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, approved.ID, prescription.CreateRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreate_StoresJSONColumns(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.account(t, "doc@x.com", true)

	bare, err := e.svc.Create(ctx, doc.ID, prescription.CreateRequest{
		PatientName: "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", bare.MedicationsJSON)
	assert.Nil(t, bare.TreatmentPlansJSON)
	assert.Nil(t, bare.PatientName)

	full, err := e.svc.Create(ctx, doc.ID, prescription.CreateRequest{
		PatientName: " Ion Popescu ",
		Medications: []json.RawMessage{
			json.RawMessage(`{"name":"Paracetamol","dose":"500mg"}`),
		},
		TreatmentPlans: map[string]json.RawMessage{
			"Paracetamol": json.RawMessage(`{"days":5}`),
		},
		DoctorNotes: "after meals",
	})
	require.NoError(t, err)
	require.NotNil(t, full.PatientName)
	assert.Equal(t, "Ion Popescu", *full.PatientName)
	require.NotNil(t, full.TreatmentPlansJSON)

	decoded := full.Decode()
	require.Len(t, decoded.Medications, 1)
	assert.JSONEq(t, `{"name":"Paracetamol","dose":"500mg"}`, string(decoded.Medications[0]))
	assert.JSONEq(t, `{"days":5}`, string(decoded.TreatmentPlans["Paracetamol"]))

	items, err := e.svc.List(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, full.ID, items[0].ID, "newest first")
	assert.Equal(t, bare.ID, items[1].ID)
}

func TestDecode_Degrades(t *testing.T) {
	broken := "{oops"
	p := prescription.Prescription{
		MedicationsJSON:    "not json",
		TreatmentPlansJSON: &broken,
	}

	d := p.Decode()
	assert.NotNil(t, d.Medications)
	assert.Empty(t, d.Medications)
	assert.Nil(t, d.TreatmentPlans)

	empty := prescription.Prescription{MedicationsJSON: "null"}
	assert.NotNil(t, empty.Decode().Medications)
}

func TestDelete_IsOwnerScoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ana := e.account(t, "ana@x.com", true)
	bob := e.account(t, "bob@x.com", true)

	p, err := e.svc.Create(ctx, ana.ID, prescription.CreateRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, e.svc.Delete(ctx, bob.ID, p.ID), core.ErrNotFound)
	require.NoError(t, e.svc.Delete(ctx, ana.ID, p.ID))
	assert.ErrorIs(t, e.svc.Delete(ctx, ana.ID, p.ID), core.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ana := e.account(t, "ana@x.com", true)
	bob := e.account(t, "bob@x.com", true)

	for range 3 {
		_, err := e.svc.Create(ctx, ana.ID, prescription.CreateRequest{})
		require.NoError(t, err)
	}
	_, err := e.svc.Create(ctx, bob.ID, prescription.CreateRequest{})
	require.NoError(t, err)

	n, err := e.svc.DeleteAll(ctx, ana.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = e.svc.DeleteAll(ctx, ana.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err := e.svc.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	_, err = e.svc.DeleteAll(ctx, 999999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
