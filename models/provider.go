package models

import (
	"time"

	"gorm.io/gorm"
)

type ProviderType string

const (
	ProviderIndividual ProviderType = "individual"
	ProviderSalon      ProviderType = "salon"
)

// Onboarding steps, strictly ordered. A provider at step N has finished
// everything up to and including N.
const (
	StepNone         = 0
	StepSubscription = 1
	StepProviderType = 2
	StepSalonDetails = 3
	StepDocuments    = 4
	StepWorkingHours = 5
	StepServices     = 6
)

type ServiceProvider struct {
	gorm.Model
	UserID                 uint         `json:"user_id" gorm:"uniqueIndex"`
	User                   User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProviderType           ProviderType `json:"provider_type" gorm:"default:individual"`
	SalonName              string       `json:"salon_name"`
	BannerImage            string       `json:"banner_image"`
	Description            string       `json:"description"`
	NationalIDImage        string       `json:"national_id_image"`
	FreelanceCertificate   string       `json:"freelance_certificate"`
	CommercialRegistration string       `json:"commercial_registration"`
	StepCompleted          int          `json:"step_completed" gorm:"default:0"`
	IsApproved             bool         `json:"is_approved" gorm:"default:false"`
	RejectionReason        string       `json:"rejection_reason,omitempty"`
	SubscriptionID         string       `json:"subscription_id"`
	SubscriptionExpiry     *time.Time   `json:"subscription_expiry,omitempty"`
}

// AdvanceStep records completion of a step. step_completed never regresses:
// re-submitting an earlier step keeps the highest step reached.
func (p *ServiceProvider) AdvanceStep(tx *gorm.DB, step int) error {
	if step <= p.StepCompleted {
		return nil
	}
	p.StepCompleted = step
	return tx.Model(p).Update("step_completed", step).Error
}

// CanEnter reports whether the provider may execute the given step. Step N
// requires step N-1 to be recorded; completed steps stay editable.
func (p *ServiceProvider) CanEnter(step int) bool {
	return p.StepCompleted >= step-1
}

// OnboardingComplete is true once all six steps are recorded. Admin approval
// is a separate gate on top of this.
func (p *ServiceProvider) OnboardingComplete() bool {
	return p.StepCompleted >= StepServices
}
