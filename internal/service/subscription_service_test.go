package service

import (
	"testing"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) trialClient(t *testing.T, email string) *model.User {
	t.Helper()
	u := e.client(t, email)
	_, err := e.subSvc.StartTrialTx(e.db, u.ID)
	require.NoError(t, err)
	return u
}

func (e *env) plan(t *testing.T, name, cycle, price string) dto.PlanResponse {
	t.Helper()
	p, err := e.planSvc.Create(e.ctx, dto.PlanRequest{Name: name, BillingCycle: cycle, Price: dec(price)})
	require.NoError(t, err)
	return p
}

func TestTrial_ExpiresLazily(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")

	cur, err := e.subSvc.Current(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, cur.Status)
	assert.True(t, cur.Usable)
	assert.Equal(t, 1, cur.DaysLeft)
	require.NoError(t, e.subSvc.EnsureUsable(e.ctx, u.ID))

	e.now = e.now.Add(24 * time.Hour)
	cur, err = e.subSvc.Current(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, cur.Status)
	assert.False(t, cur.Usable)

	stored, err := e.subs.FindByUser(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, stored.Status, "expiry is persisted on read")

	err = e.subSvc.EnsureUsable(e.ctx, u.ID)
	var f *apierror.ForbiddenError
	require.ErrorAs(t, err, &f)
}

func TestEnsureUsable_NoSubscription(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	var f *apierror.ForbiddenError
	require.ErrorAs(t, e.subSvc.EnsureUsable(e.ctx, u.ID), &f)
}

func TestPlanRequest_ApproveActivatesPlan(t *testing.T) {
	e := newEnv(t)
	admin := e.client(t, "root@printscrap.test")
	u := e.trialClient(t, "a@press.test")
	monthly := e.plan(t, "Standard", model.CycleMonthly, "999")

	req, err := e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: monthly.ID, Message: ptr("please")})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "Standard", req.PlanName)

	_, err = e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: monthly.ID})
	var c *apierror.ConflictError
	require.ErrorAs(t, err, &c, "only one pending request")

	done, err := e.subSvc.Approve(e.ctx, admin.ID, req.ID, dto.ProcessPlanRequest{Remarks: ptr("paid")})
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, done.Status)
	require.NotNil(t, done.ProcessedAt)

	cur, err := e.subSvc.Current(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, cur.Status)
	assert.Equal(t, "Standard", cur.PlanName)
	assert.Equal(t, "2024-03-15T10:30:00Z", cur.StartDate)
	assert.Equal(t, "2024-04-15T10:30:00Z", cur.EndDate)

	_, err = e.subSvc.Approve(e.ctx, admin.ID, req.ID, dto.ProcessPlanRequest{})
	require.ErrorAs(t, err, &c, "already processed")

	_, err = e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: monthly.ID})
	require.NoError(t, err, "a resolved request no longer blocks new ones")
}

func TestPlanRequest_ApproveWithOverrideDates(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")
	yearly := e.plan(t, "Pro", model.CycleYearly, "9999")
	req, err := e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: yearly.ID})
	require.NoError(t, err)

	_, err = e.subSvc.Approve(e.ctx, 1, req.ID, dto.ProcessPlanRequest{StartDate: ptr("2024-04-01"), EndDate: ptr("2024-03-01")})
	var v *apierror.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "endDate", v.Field)

	_, err = e.subSvc.Approve(e.ctx, 1, req.ID, dto.ProcessPlanRequest{StartDate: ptr("2024-04-01")})
	require.NoError(t, err)
	cur, err := e.subSvc.Current(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01T00:00:00Z", cur.StartDate)
	assert.Equal(t, "2025-04-01T00:00:00Z", cur.EndDate)
}

func TestPlanRequest_Reject(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")
	p := e.plan(t, "Standard", model.CycleMonthly, "999")
	req, err := e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: p.ID})
	require.NoError(t, err)

	done, err := e.subSvc.Reject(e.ctx, 1, req.ID, dto.ProcessPlanRequest{Remarks: ptr("payment not received")})
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, done.Status)
	require.NotNil(t, done.AdminRemarks)

	cur, err := e.subSvc.Current(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, cur.Status)

	page, err := e.subSvc.ListRequests(e.ctx, 0, dto.PlanRequestFilter{Status: model.RequestRejected})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestSubmitRequest_InactivePlan(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")
	p, err := e.planSvc.Create(e.ctx, dto.PlanRequest{Name: "Legacy", BillingCycle: model.CycleDaily, Price: dec("10"), Active: ptr(false)})
	require.NoError(t, err)

	_, err = e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: p.ID})
	var v *apierror.ValidationError
	require.ErrorAs(t, err, &v)
}

func TestPlanCreate_KeepsInactiveFlag(t *testing.T) {
	e := newEnv(t)
	p, err := e.planSvc.Create(e.ctx, dto.PlanRequest{Name: "Legacy", BillingCycle: model.CycleMonthly, Price: dec("10"), Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, p.Active)

	stored, err := e.plans.FindByID(e.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	listed, err := e.planSvc.List(e.ctx, true)
	require.NoError(t, err)
	for _, l := range listed {
		assert.NotEqual(t, p.ID, l.ID)
	}
}

func TestSubscription_CancelAndExtend(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")
	sub, err := e.subs.FindByUser(e.ctx, u.ID)
	require.NoError(t, err)

	got, err := e.subSvc.Cancel(e.ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCancelled, got.Status)
	var c *apierror.ConflictError
	_, err = e.subSvc.Cancel(e.ctx, sub.ID)
	require.ErrorAs(t, err, &c)

	_, err = e.subSvc.Extend(e.ctx, sub.ID, dto.ExtendSubscriptionRequest{EndDate: "2024-03-01"})
	var v *apierror.ValidationError
	require.ErrorAs(t, err, &v)

	got, err = e.subSvc.Extend(e.ctx, sub.ID, dto.ExtendSubscriptionRequest{EndDate: "2024-03-20T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionTrial, got.Status, "reopened window resumes the trial")
	assert.Equal(t, "2024-03-20T00:00:00Z", got.EndDate)
	assert.True(t, got.Usable)
}

func TestSubscriptionList_FiltersByEffectiveStatus(t *testing.T) {
	e := newEnv(t)
	e.trialClient(t, "a@press.test")
	e.now = e.now.Add(12 * time.Hour)
	e.trialClient(t, "b@press.test")
	e.now = e.now.Add(13 * time.Hour)

	expired, err := e.subSvc.List(e.ctx, dto.SubscriptionFilter{Status: model.SubscriptionExpired})
	require.NoError(t, err)
	require.EqualValues(t, 1, expired.Total)
	assert.Equal(t, model.SubscriptionExpired, expired.Data[0].Status)
	require.NotNil(t, expired.Data[0].Company)
	assert.Equal(t, "Press a@press.test", *expired.Data[0].Company)

	trials, err := e.subSvc.List(e.ctx, dto.SubscriptionFilter{Status: model.SubscriptionTrial})
	require.NoError(t, err)
	assert.EqualValues(t, 1, trials.Total)
}

func TestPlanDelete_RefusedWhileReferenced(t *testing.T) {
	e := newEnv(t)
	u := e.trialClient(t, "a@press.test")
	p := e.plan(t, "Standard", model.CycleMonthly, "999")
	unused := e.plan(t, "Unused", model.CycleMonthly, "1")
	_, err := e.subSvc.SubmitRequest(e.ctx, u.ID, dto.SubmitPlanRequest{PlanID: p.ID})
	require.NoError(t, err)

	var c *apierror.ConflictError
	require.ErrorAs(t, e.planSvc.Delete(e.ctx, p.ID), &c)
	require.NoError(t, e.planSvc.Delete(e.ctx, unused.ID))

	_, err = e.planSvc.Create(e.ctx, dto.PlanRequest{Name: "Standard", BillingCycle: model.CycleMonthly, Price: dec("1")})
	require.ErrorAs(t, err, &c, "plan names are unique")
}
