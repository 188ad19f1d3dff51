package routers_test

import (
	"bytes"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/testutil"
	"eduhub/utils"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// stubStripe replaces the Stripe API calls for the duration of the test
func stubStripe(t *testing.T) *[]*stripe.CheckoutSessionParams {
	t.Helper()
	var calls []*stripe.CheckoutSessionParams

	newSession, cancel := utils.NewCheckoutSession, utils.CancelSubscriptionAtPeriodEnd
	utils.NewCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		calls = append(calls, params)
		id := fmt.Sprintf("cs_test_%d", len(calls))
		return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
	}
	utils.CancelSubscriptionAtPeriodEnd = func(id string) (*stripe.Subscription, error) {
		return &stripe.Subscription{ID: id, CancelAtPeriodEnd: true}, nil
	}
	t.Cleanup(func() {
		utils.NewCheckoutSession, utils.CancelSubscriptionAtPeriodEnd = newSession, cancel
	})
	return &calls
}

// deliver posts a signed Stripe event to the webhook endpoint
func deliver(t *testing.T, app *fiber.App, id, eventType string, object map[string]interface{}) int {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data":        map[string]interface{}{"object": object},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testutil.WebhookSecret,
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(signed.Payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)
	status, _ := testutil.Send(t, app, req)
	return status
}

func TestCoursePurchase(t *testing.T) {
	app, db := newApp(t)
	calls := stubStripe(t)

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	token := testutil.Token(t, student)
	course := testutil.CreateCourse(t, db, instructor.ID, 5000, true)
	free := testutil.CreateCourse(t, db, instructor.ID, 0, true)

	status, _ := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/payment/checkout/course/%d", free.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/payment/checkout/course/%d", course.ID), token, nil)
	require.Equal(t, http.StatusCreated, status, body.Message)
	var checkout struct {
		SessionID string `json:"session_id"`
		URL       string `json:"url"`
	}
	body.DataAs(t, &checkout)
	assert.Equal(t, "cs_test_1", checkout.SessionID)
	require.Len(t, *calls, 1)
	assert.Equal(t, fmt.Sprint(course.ID), (*calls)[0].Metadata["course_id"])
	assert.Equal(t, fmt.Sprint(student.ID), *(*calls)[0].ClientReferenceID)

	completed := map[string]interface{}{
		"id":                  checkout.SessionID,
		"object":              "checkout.session",
		"mode":                "payment",
		"client_reference_id": fmt.Sprint(student.ID),
		"customer":            "cus_student",
		"payment_intent":      "pi_course",
		"amount_total":        5000,
		"currency":            "usd",
		"metadata":            map[string]string{"user_id": fmt.Sprint(student.ID), "course_id": fmt.Sprint(course.ID)},
	}
	require.Equal(t, http.StatusOK, deliver(t, app, "evt_checkout", "checkout.session.completed", completed))
	assert.Equal(t, http.StatusOK, deliver(t, app, "evt_checkout", "checkout.session.completed", completed), "redelivery is acknowledged")

	var payments []models.Payment
	require.NoError(t, db.Where("user_id = ?", student.ID).Find(&payments).Error)
	require.Len(t, payments, 1, "the pending payment is settled, not duplicated")
	payment := payments[0]
	assert.Equal(t, models.PaymentSucceeded, payment.Status)
	assert.Equal(t, int64(1000), payment.PlatformFee)
	assert.Equal(t, int64(4000), payment.InstructorShare)
	assert.Equal(t, "pi_course", payment.StripePaymentIntentID)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, courseModels.SourcePurchase, enrollment.Source)
	require.NotNil(t, enrollment.PaymentID)
	assert.Equal(t, payment.ID, *enrollment.PaymentID)

	var customer models.User
	require.NoError(t, db.First(&customer, student.ID).Error)
	assert.Equal(t, "cus_student", customer.StripeCustomerID)

	status, _ = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/payment/checkout/course/%d", course.ID), token, nil)
	assert.Equal(t, http.StatusConflict, status, "already enrolled")

	var events int64
	db.Model(&models.StripeEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)

	t.Run("partial refund", func(t *testing.T) {
		require.Equal(t, http.StatusOK, deliver(t, app, "evt_partial_refund", "charge.refunded", map[string]interface{}{
			"id": "ch_1", "object": "charge", "payment_intent": "pi_course",
			"amount": 5000, "amount_refunded": 2000, "refunded": false,
		}))

		var kept models.Payment
		require.NoError(t, db.First(&kept, payment.ID).Error)
		assert.Equal(t, models.PaymentSucceeded, kept.Status)
		assert.Nil(t, kept.RefundedAt)

		var active courseModels.Enrollment
		require.NoError(t, db.First(&active, enrollment.ID).Error)
		assert.Equal(t, courseModels.EnrollmentActive, active.Status)
	})

	t.Run("refund", func(t *testing.T) {
		require.Equal(t, http.StatusOK, deliver(t, app, "evt_refund", "charge.refunded", map[string]interface{}{
			"id": "ch_1", "object": "charge", "payment_intent": "pi_course", "refunded": true,
		}))

		var refunded models.Payment
		require.NoError(t, db.First(&refunded, payment.ID).Error)
		assert.Equal(t, models.PaymentRefunded, refunded.Status)
		assert.NotNil(t, refunded.RefundedAt)

		require.NoError(t, db.First(&enrollment, enrollment.ID).Error)
		assert.Equal(t, courseModels.EnrollmentCancelled, enrollment.Status)
	})

	status, body = testutil.Do(t, app, http.MethodGet, "/payment/history?status=refunded", token, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	assert.Contains(t, string(body.Data), `"status":"REFUNDED"`)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db := newApp(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{"id":"evt_forged","type":"charge.refunded"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	status, raw := testutil.Send(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
	var body testutil.Envelope
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Status)
	assert.Equal(t, "Invalid signature!", body.Message)

	var events int64
	db.Model(&models.StripeEvent{}).Count(&events)
	assert.Zero(t, events)
}

func TestWebhookFailureIsRetried(t *testing.T) {
	app, db := newApp(t)

	// a course purchase without a course reference cannot be applied
	broken := map[string]interface{}{
		"id": "cs_broken", "object": "checkout.session", "mode": "payment", "client_reference_id": "1",
	}
	assert.Equal(t, http.StatusInternalServerError, deliver(t, app, "evt_broken", "checkout.session.completed", broken))

	var events int64
	db.Model(&models.StripeEvent{}).Count(&events)
	assert.Zero(t, events, "failed events are not recorded so Stripe retries them")
}

func TestSubscriptionLifecycle(t *testing.T) {
	app, db := newApp(t)
	calls := stubStripe(t)

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	token := testutil.Token(t, student)
	course := testutil.CreateCourse(t, db, instructor.ID, 9900, true)

	status, body := testutil.Do(t, app, http.MethodPost, "/payment/checkout/subscription", token, fiber.Map{
		"price_id": "price_monthly", "plan_name": "Monthly",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	require.Len(t, *calls, 1)
	assert.Equal(t, "Monthly", (*calls)[0].SubscriptionData.Metadata["plan_name"])

	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	subscription := map[string]interface{}{
		"id":                   "sub_monthly",
		"object":               "subscription",
		"status":               "active",
		"customer":             "cus_sub",
		"current_period_start": time.Now().Unix(),
		"current_period_end":   periodEnd.Unix(),
		"metadata":             map[string]string{"user_id": fmt.Sprint(student.ID), "plan_name": "Monthly"},
	}
	require.Equal(t, http.StatusOK, deliver(t, app, "evt_sub_created", "customer.subscription.created", subscription))

	status, body = testutil.Do(t, app, http.MethodGet, "/subscription/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Subscription models.Subscription `json:"subscription"`
		HasAccess    bool                `json:"has_access"`
	}
	body.DataAs(t, &me)
	assert.True(t, me.HasAccess)
	assert.Equal(t, "Monthly", me.Subscription.PlanName)

	require.Equal(t, http.StatusOK, deliver(t, app, "evt_invoice", "invoice.paid", map[string]interface{}{
		"id": "in_1", "object": "invoice", "subscription": "sub_monthly", "customer": "cus_sub",
		"amount_paid": 1500, "currency": "usd",
	}))
	var invoicePayment models.Payment
	require.NoError(t, db.Where("stripe_invoice_id = ?", "in_1").First(&invoicePayment).Error)
	assert.Equal(t, models.PaymentKindSubscription, invoicePayment.Kind)
	assert.Equal(t, int64(1500), invoicePayment.PlatformFee)

	status, body = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	require.Equal(t, http.StatusCreated, status, body.Message)

	status, _ = testutil.Do(t, app, http.MethodPost, "/payment/checkout/subscription", token, fiber.Map{
		"price_id": "price_monthly", "plan_name": "Monthly",
	})
	assert.Equal(t, http.StatusConflict, status, "one active subscription at a time")

	status, _ = testutil.Do(t, app, http.MethodPost, "/subscription/cancel", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = testutil.Do(t, app, http.MethodPost, "/subscription/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, status)

	require.Equal(t, http.StatusOK, deliver(t, app, "evt_past_due", "invoice.payment_failed", map[string]interface{}{
		"id": "in_2", "object": "invoice", "subscription": "sub_monthly", "customer": "cus_sub",
	}))
	var sub models.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_monthly").First(&sub).Error)
	assert.Equal(t, models.SubscriptionPastDue, sub.Status)

	status, body = testutil.Do(t, app, http.MethodGet, "/subscription/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	body.DataAs(t, &me)
	assert.False(t, me.HasAccess)
}

func TestSubscriptionForUnknownUserIsAcknowledged(t *testing.T) {
	app, db := newApp(t)

	status := deliver(t, app, "evt_orphan", "customer.subscription.updated", map[string]interface{}{
		"id": "sub_orphan", "object": "subscription", "status": "active", "customer": "cus_nobody",
	})
	assert.Equal(t, http.StatusOK, status)

	var subs int64
	db.Model(&models.Subscription{}).Count(&subs)
	assert.Zero(t, subs)
}
