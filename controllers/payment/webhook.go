package paymentController

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func logWebhook(format string, args ...interface{}) {
	log.Printf("[STRIPE-WEBHOOK] "+format, args...)
}

// StripeWebhook verifies and applies a Stripe event. Every event id is applied
// once: the StripeEvent row is written in the same transaction as the changes,
// so a failed event is not recorded and Stripe delivers it again.
func StripeWebhook(c *fiber.Ctx) error {
	secret := config.AppConfig.StripeWebhookSecret
	if secret == "" {
		logWebhook("rejected event: STRIPE_WEBHOOK_SECRET is not configured")
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook secret not configured!", nil)
	}

	payload := append([]byte(nil), c.Body()...)
	event, err := webhook.ConstructEventWithOptions(payload, c.Get("Stripe-Signature"), secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		logWebhook("signature verification failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid signature!", nil)
	}

	db := database.Database.Db

	var seen int64
	if err := db.Model(&models.StripeEvent{}).Where("event_id = ?", event.ID).Count(&seen).Error; err != nil {
		utils.ReportError(err, map[string]interface{}{"area": "stripe-webhook", "event_id": event.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Webhook handler failed!", nil)
	}
	if seen > 0 {
		logWebhook("duplicate event %s (%s) ignored", event.ID, event.Type)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already processed.", fiber.Map{"received": true, "duplicate": true})
	}

	h := &eventHandler{at: time.Now()}
	err = db.Transaction(func(tx *gorm.DB) error {
		h.tx = tx
		if err := h.handle(event); err != nil {
			return err
		}
		return tx.Create(&models.StripeEvent{
			EventID:     event.ID,
			Type:        string(event.Type),
			Payload:     datatypes.JSON(payload),
			ProcessedAt: h.at,
		}).Error
	})
	if err != nil {
		logWebhook("event %s (%s) failed: %v", event.ID, event.Type, err)
		utils.ReportError(err, map[string]interface{}{"area": "stripe-webhook", "event_id": event.ID, "type": string(event.Type)})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Webhook handler failed!", nil)
	}

	for _, notify := range h.after {
		notify()
	}

	logWebhook("event %s (%s) processed", event.ID, event.Type)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed.", fiber.Map{"received": true})
}

// eventHandler applies one event inside a transaction. Notifications are
// queued in after and sent once the transaction has committed.
type eventHandler struct {
	tx    *gorm.DB
	at    time.Time
	after []func()
}

func (h *eventHandler) handle(event stripe.Event) error {
	if event.Data == nil {
		return errors.New("event has no data")
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return h.checkoutCompleted(&session)

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return h.checkoutFailed(&session)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.subscriptionChanged(&sub)

	case "invoice.paid", "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return h.invoicePaid(&invoice)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return h.invoiceFailed(&invoice)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return fmt.Errorf("decode charge: %w", err)
		}
		return h.chargeRefunded(&charge)
	}

	logWebhook("unhandled event type %s stored", event.Type)
	return nil
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func unixTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

// sessionUserID reads the user id the session was opened for
func sessionUserID(session *stripe.CheckoutSession) uint {
	if id := parseID(session.ClientReferenceID); id != 0 {
		return id
	}
	return parseID(session.Metadata[metaUserID])
}

// rememberCustomer stores the Stripe customer id on the user when it is not known yet
func (h *eventHandler) rememberCustomer(userID uint, customer *stripe.Customer) error {
	if userID == 0 || customer == nil || customer.ID == "" {
		return nil
	}
	return h.tx.Model(&models.User{}).
		Where("id = ? AND (stripe_customer_id = '' OR stripe_customer_id IS NULL)", userID).
		Update("stripe_customer_id", customer.ID).Error
}

// userForCustomer finds the user owning a Stripe customer id
func (h *eventHandler) userForCustomer(customer *stripe.Customer) (uint, error) {
	if customer == nil || customer.ID == "" {
		return 0, nil
	}
	var user models.User
	err := h.tx.Select("id").Where("stripe_customer_id = ? AND is_deleted = ?", customer.ID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return user.ID, err
}

func (h *eventHandler) checkoutCompleted(session *stripe.CheckoutSession) error {
	userID := sessionUserID(session)
	if err := h.rememberCustomer(userID, session.Customer); err != nil {
		return err
	}

	switch session.Mode {
	case stripe.CheckoutSessionModePayment:
		return h.coursePurchased(session, userID)
	case stripe.CheckoutSessionModeSubscription:
		return h.subscriptionCheckedOut(session, userID)
	}
	return nil
}

// coursePurchased settles the payment of a course checkout and enrolls the buyer
func (h *eventHandler) coursePurchased(session *stripe.CheckoutSession, userID uint) error {
	var payment models.Payment
	err := h.tx.Where("stripe_session_id = ?", session.ID).First(&payment).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		courseID := parseID(session.Metadata[metaCourseID])
		if userID == 0 || courseID == 0 {
			return fmt.Errorf("checkout session %s has no user or course reference", session.ID)
		}
		course, err := services.FindCourse(h.tx, courseID)
		if err != nil {
			return fmt.Errorf("checkout session %s: %w", session.ID, err)
		}
		sessionID := session.ID
		instructorID := course.InstructorID
		payment = models.Payment{
			UserID:          userID,
			CourseID:        &courseID,
			InstructorID:    &instructorID,
			Kind:            models.PaymentKindCourse,
			StripeSessionID: &sessionID,
			Amount:          course.Price,
			Currency:        course.Currency,
		}
	case err != nil:
		return err
	}

	if payment.Status == models.PaymentSucceeded || payment.Status == models.PaymentRefunded {
		return nil
	}

	if session.AmountTotal > 0 {
		payment.Amount = session.AmountTotal
	}
	if session.Currency != "" {
		payment.Currency = string(session.Currency)
	}
	if session.PaymentIntent != nil {
		payment.StripePaymentIntentID = session.PaymentIntent.ID
	}
	payment.PlatformFee, payment.InstructorShare = services.SplitAmount(payment.Amount, config.AppConfig.PlatformFeePercent)
	payment.Status = models.PaymentSucceeded
	paidAt := h.at
	payment.PaidAt = &paidAt

	if err := h.tx.Save(&payment).Error; err != nil {
		return err
	}
	if payment.CourseID == nil {
		return nil
	}

	_, err = services.Enroll(h.tx, payment.UserID, *payment.CourseID, courseModels.SourcePurchase, &payment.ID)
	if err != nil && !errors.Is(err, services.ErrAlreadyEnrolled) {
		return err
	}

	var user models.User
	var course courseModels.Course
	if err := h.tx.Where("id = ?", payment.UserID).First(&user).Error; err != nil {
		return err
	}
	if err := h.tx.Where("id = ?", *payment.CourseID).First(&course).Error; err != nil {
		return err
	}
	amount, currency := payment.Amount, payment.Currency
	h.after = append(h.after, func() {
		utils.SendPaymentReceiptEmail(user.Email, user.Name, course.Title, amount, currency)
		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	})
	return nil
}

// subscriptionCheckedOut records the subscription behind a completed subscription checkout.
// The subscription events that follow carry the exact status and period.
func (h *eventHandler) subscriptionCheckedOut(session *stripe.CheckoutSession, userID uint) error {
	if session.Subscription == nil || session.Subscription.ID == "" {
		return fmt.Errorf("checkout session %s has no subscription", session.ID)
	}

	var sub models.Subscription
	err := h.tx.Where("stripe_subscription_id = ?", session.Subscription.ID).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if userID == 0 {
			return fmt.Errorf("checkout session %s has no user reference", session.ID)
		}
		sub = models.Subscription{
			UserID:               userID,
			StripeSubscriptionID: session.Subscription.ID,
			Status:               models.SubscriptionActive,
		}
	case err != nil:
		return err
	}

	if sub.UserID == 0 {
		sub.UserID = userID
	}
	if session.Customer != nil && session.Customer.ID != "" {
		sub.StripeCustomerID = session.Customer.ID
	}
	if plan := session.Metadata[metaPlanName]; plan != "" {
		sub.PlanName = plan
	}
	return h.tx.Save(&sub).Error
}

func (h *eventHandler) checkoutFailed(session *stripe.CheckoutSession) error {
	return h.tx.Model(&models.Payment{}).
		Where("stripe_session_id = ? AND status = ?", session.ID, models.PaymentPending).
		Update("status", models.PaymentFailed).Error
}

// subscriptionChanged mirrors a Stripe subscription. The status is stored as Stripe reports it.
func (h *eventHandler) subscriptionChanged(stripeSub *stripe.Subscription) error {
	var sub models.Subscription
	err := h.tx.Where("stripe_subscription_id = ?", stripeSub.ID).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		userID := parseID(stripeSub.Metadata[metaUserID])
		if userID == 0 {
			if userID, err = h.userForCustomer(stripeSub.Customer); err != nil {
				return err
			}
		}
		if userID == 0 {
			logWebhook("subscription %s belongs to no known user, skipped", stripeSub.ID)
			return nil
		}
		sub = models.Subscription{UserID: userID, StripeSubscriptionID: stripeSub.ID}
	case err != nil:
		return err
	}

	wasEnding := sub.CancelAtPeriodEnd
	sub.Status = string(stripeSub.Status)
	if stripeSub.Customer != nil && stripeSub.Customer.ID != "" {
		sub.StripeCustomerID = stripeSub.Customer.ID
	}
	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 && stripeSub.Items.Data[0].Price != nil {
		sub.StripePriceID = stripeSub.Items.Data[0].Price.ID
	}
	if plan := stripeSub.Metadata[metaPlanName]; plan != "" {
		sub.PlanName = plan
	}
	sub.CurrentPeriodStart = unixTime(stripeSub.CurrentPeriodStart)
	sub.CurrentPeriodEnd = unixTime(stripeSub.CurrentPeriodEnd)
	sub.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	sub.CanceledAt = unixTime(stripeSub.CanceledAt)

	// a renewed plan gets a fresh ending reminder
	if wasEnding && !sub.CancelAtPeriodEnd {
		sub.ReminderSent = false
	}

	if err := h.rememberCustomer(sub.UserID, stripeSub.Customer); err != nil {
		return err
	}
	return h.tx.Save(&sub).Error
}

// invoicePaid books a subscription charge. The whole amount is platform revenue.
func (h *eventHandler) invoicePaid(invoice *stripe.Invoice) error {
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	var existing int64
	if err := h.tx.Model(&models.Payment{}).Where("stripe_invoice_id = ?", invoice.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	var userID uint
	var sub models.Subscription
	err := h.tx.Where("stripe_subscription_id = ?", invoice.Subscription.ID).First(&sub).Error
	switch {
	case err == nil:
		userID = sub.UserID
	case errors.Is(err, gorm.ErrRecordNotFound):
		if userID, err = h.userForCustomer(invoice.Customer); err != nil {
			return err
		}
	default:
		return err
	}
	if userID == 0 {
		return fmt.Errorf("invoice %s belongs to no known user", invoice.ID)
	}

	invoiceID := invoice.ID
	paidAt := h.at
	payment := models.Payment{
		UserID:          userID,
		Kind:            models.PaymentKindSubscription,
		StripeInvoiceID: &invoiceID,
		Amount:          invoice.AmountPaid,
		Currency:        string(invoice.Currency),
		Status:          models.PaymentSucceeded,
		PlatformFee:     invoice.AmountPaid,
		InstructorShare: 0,
		PaidAt:          &paidAt,
	}
	if invoice.PaymentIntent != nil {
		payment.StripePaymentIntentID = invoice.PaymentIntent.ID
	}
	if err := h.tx.Create(&payment).Error; err != nil {
		return err
	}

	var user models.User
	if err := h.tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	plan := sub.PlanName
	if plan == "" {
		plan = "EduHub subscription"
	}
	h.after = append(h.after, func() {
		utils.SendPaymentReceiptEmail(user.Email, user.Name, plan, payment.Amount, payment.Currency)
	})
	return nil
}

func (h *eventHandler) invoiceFailed(invoice *stripe.Invoice) error {
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}
	return h.tx.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", invoice.Subscription.ID).
		Update("status", models.SubscriptionPastDue).Error
}

// chargeRefunded refunds the payment behind a fully refunded charge and revokes
// the enrollment it paid for. Partial refunds leave both untouched.
func (h *eventHandler) chargeRefunded(charge *stripe.Charge) error {
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return nil
	}

	var payment models.Payment
	err := h.tx.Where("stripe_payment_intent_id = ?", charge.PaymentIntent.ID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logWebhook("refund for unknown payment intent %s skipped", charge.PaymentIntent.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentRefunded {
		return nil
	}
	if !charge.Refunded {
		logWebhook("partial refund of %d/%d on payment %d recorded by Stripe only", charge.AmountRefunded, charge.Amount, payment.ID)
		return nil
	}

	refundedAt := h.at
	payment.Status = models.PaymentRefunded
	payment.RefundedAt = &refundedAt
	if err := h.tx.Save(&payment).Error; err != nil {
		return err
	}

	if payment.CourseID == nil {
		return nil
	}
	return h.tx.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND payment_id = ? AND is_deleted = ?", payment.UserID, *payment.CourseID, payment.ID, false).
		Update("status", courseModels.EnrollmentCancelled).Error
}
