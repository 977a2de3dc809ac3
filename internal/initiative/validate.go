package initiative

import (
	"changemakers/internal/geo"
	"changemakers/internal/utils"
	"changemakers/pkg/types"
)

// ValidateDraft rejects a draft before anything is written.
func ValidateDraft(draft *types.InitiativeDraft) error {
	if draft == nil {
		return types.NewValidationError("initiative", "is required")
	}

	if utils.Blank(draft.Title) {
		return types.NewValidationError("title", "is required")
	}
	if !draft.Category.IsValid() {
		return types.NewValidationError("category", "is not a known category")
	}
	if draft.TargetAmount < 0 {
		return types.NewValidationError("targetAmount", "must not be negative")
	}
	if draft.RaisedAmount < 0 {
		return types.NewValidationError("raisedAmount", "must not be negative")
	}
	if draft.Status != "" && !draft.Status.IsValid() {
		return types.NewValidationError("status", "is not a known status")
	}

	if err := geo.Validate(draft.Coordinate); err != nil {
		return err
	}
	if err := geo.ValidateGeofence(draft.Geofence); err != nil {
		return err
	}

	if err := validatePayment(draft.PaymentDetails); err != nil {
		return err
	}

	for _, m := range draft.Milestones {
		if err := validateMilestone(m.Title, m.Status); err != nil {
			return err
		}
	}

	return nil
}

// ValidateInitiative checks an edited initiative before it replaces the stored row.
func ValidateInitiative(initiative *types.Initiative) error {
	if initiative == nil || utils.Blank(initiative.ID) {
		return types.NewValidationError("id", "is required")
	}
	if utils.Blank(initiative.Title) {
		return types.NewValidationError("title", "is required")
	}
	if !initiative.Category.IsValid() {
		return types.NewValidationError("category", "is not a known category")
	}
	if initiative.TargetAmount < 0 {
		return types.NewValidationError("targetAmount", "must not be negative")
	}
	if initiative.RaisedAmount < 0 {
		return types.NewValidationError("raisedAmount", "must not be negative")
	}
	if !initiative.Status.IsValid() {
		return types.NewValidationError("status", "is not a known status")
	}

	coordinate := initiative.Coordinate()
	if err := geo.Validate(&coordinate); err != nil {
		return err
	}
	if err := geo.ValidateGeofence(initiative.Geofence); err != nil {
		return err
	}

	if err := validatePayment(initiative.PaymentDetails); err != nil {
		return err
	}

	for _, m := range initiative.Milestones {
		if m == nil {
			continue
		}
		if err := validateMilestone(m.Title, m.Status); err != nil {
			return err
		}
	}

	return nil
}

func validateMilestone(title string, status types.MilestoneStatus) error {
	if utils.Blank(title) {
		return types.NewValidationError("milestones", "every milestone needs a title")
	}
	if status != "" && !status.IsValid() {
		return types.NewValidationError("milestones", "milestone status must be pending, in_progress or completed")
	}
	return nil
}

func validatePayment(details *types.PaymentDetails) error {
	if details == nil {
		return nil
	}

	switch details.Method {
	case types.PaymentMethodMpesaPaybill:
		if utils.Blank(details.PaybillNumber) || utils.Blank(details.AccountNumber) {
			return types.NewValidationError("paymentDetails", "paybill number and account number are required")
		}
	case types.PaymentMethodMpesaTill:
		if utils.Blank(details.TillNumber) {
			return types.NewValidationError("paymentDetails", "till number is required")
		}
	case types.PaymentMethodMpesaPhone:
		if utils.Blank(details.PhoneNumber) {
			return types.NewValidationError("paymentDetails", "phone number is required")
		}
	case types.PaymentMethodBank:
		if utils.Blank(details.BankName) || utils.Blank(details.BankAccount) {
			return types.NewValidationError("paymentDetails", "bank name and account are required")
		}
	default:
		return types.NewValidationError("paymentDetails", "unknown payment method")
	}

	return nil
}
