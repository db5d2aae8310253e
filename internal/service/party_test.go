package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteStaffWithJobs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	createJob(t, env, f)

	err := env.svc.DeleteStaff(ctx, f.staff.StaffID)
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Cannot delete staff member. They have 1 assigned job(s).")

	idle, err := env.svc.CreateStaff(ctx, StaffInput{FirstName: "Idle"})
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteStaff(ctx, idle.StaffID))
	assert.ErrorIs(t, env.svc.DeleteStaff(ctx, idle.StaffID), ErrNotFound)
}

func TestStaffDetailListsAssignedJobs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)

	detail, err := env.svc.GetStaff(ctx, f.staff.StaffID)
	require.NoError(t, err)
	require.Len(t, detail.AssignedJobs, 1)
	assert.Equal(t, job.JobID, detail.AssignedJobs[0].JobID)
	assert.Equal(t, "Quote", detail.AssignedJobs[0].JobStatus)

	other, err := env.svc.CreateStaff(ctx, StaffInput{FirstName: "Alex"})
	require.NoError(t, err)

	staff, err := env.svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	for _, member := range staff {
		if member.StaffID == other.StaffID {
			assert.NotNil(t, member.AssignedJobs)
			assert.Empty(t, member.AssignedJobs)
		} else {
			assert.Len(t, member.AssignedJobs, 1)
		}
	}
}

func TestClientValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.CreateClient(ctx, ClientInput{Name: "Acme", Postcode: "20000"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.CreateClient(ctx, ClientInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.GetClient(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactsAndBillingBelongToClient(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.CreateContact(ctx, ContactInput{FirstName: "Jo", ClientID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", ClientID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.ListContacts(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	f := seedParties(t, env)
	billing, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", ClientID: f.client.ClientID})
	require.NoError(t, err)

	contacts, err := env.svc.ListContacts(ctx, f.client.ClientID)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
	entities, err := env.svc.ListBilling(ctx, f.client.ClientID)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, billing.BillingID, entities[0].BillingID)

	client, err := env.svc.GetClient(ctx, f.client.ClientID)
	require.NoError(t, err)
	assert.Len(t, client.Contacts, 1)
	assert.Len(t, client.Billing, 1)
}

func TestDeletePartiesReferencedByJobs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	billing, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", ClientID: f.client.ClientID})
	require.NoError(t, err)
	in := f.jobInput()
	in.BillingEntity = &billing.BillingID
	_, err = env.svc.CreateJob(ctx, in, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DeleteClient(ctx, f.client.ClientID), ErrConflict)
	assert.ErrorIs(t, env.svc.DeleteContact(ctx, f.contact.ContactID), ErrConflict)
	assert.ErrorIs(t, env.svc.DeleteBilling(ctx, billing.BillingID), ErrConflict)
	assert.ErrorIs(t, env.svc.DeleteProject(ctx, f.project.ProjectID), ErrConflict)
}

func TestDeleteClientCascadesParties(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	_, err := env.svc.CreateBilling(ctx, BillingInput{Entity: "Acme Pty Ltd", ClientID: f.client.ClientID})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteClient(ctx, f.client.ClientID))
	_, err = env.repo.FindContactByID(ctx, f.contact.ContactID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartyUpdatesKeepFieldsNotSent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)

	client, err := env.svc.UpdateClient(ctx, f.client.ClientID, ClientUpdateInput{Name: stringPtr("Acme Signage")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Signage", client.Name)
	assert.Equal(t, "2000", client.Postcode)

	_, err = env.svc.UpdateClient(ctx, f.client.ClientID, ClientUpdateInput{Name: stringPtr("")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.UpdateClient(ctx, f.client.ClientID, ClientUpdateInput{Postcode: stringPtr("20000")})
	assert.ErrorIs(t, err, ErrValidation)

	contact, err := env.svc.UpdateContact(ctx, f.contact.ContactID, ContactUpdateInput{Phone: stringPtr("0400 000 000")})
	require.NoError(t, err)
	assert.Equal(t, "0400 000 000", contact.Phone)
	assert.Equal(t, "Jo", contact.FirstName)
	assert.Equal(t, "Bloggs", contact.Surname)
	assert.Equal(t, f.client.ClientID, contact.ClientID)

	_, err = env.svc.UpdateContact(ctx, f.contact.ContactID, ContactUpdateInput{ClientID: uintPtr(404)})
	assert.ErrorIs(t, err, ErrNotFound)

	billing, err := env.svc.CreateBilling(ctx, BillingInput{
		Entity: "Acme Pty Ltd", Address: "1 George St", Postcode: "2000", ClientID: f.client.ClientID,
	})
	require.NoError(t, err)
	billing, err = env.svc.UpdateBilling(ctx, billing.BillingID, BillingUpdateInput{Entity: stringPtr("Acme Holdings")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", billing.Entity)
	assert.Equal(t, "1 George St", billing.Address)
	assert.Equal(t, "2000", billing.Postcode)
	assert.Equal(t, f.client.ClientID, billing.ClientID)
}
