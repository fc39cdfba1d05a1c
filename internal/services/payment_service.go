// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/workbridge/workbridge-backend/internal/config"
	"github.com/workbridge/workbridge-backend/internal/models"
)

// PaymentService funds the escrow for an assigned project: the client pays
// the negotiated amount plus the platform fee through Stripe.
type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type EscrowIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	PlatformFee  float64 `json:"platform_fee"`
	Status       string  `json:"status"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: config,
	}
}

// CreateEscrowIntent creates a Stripe PaymentIntent for the project's final
// amount. Only the owning client may fund, and only once the project is
// assigned with a negotiated amount.
func (s *PaymentService) CreateEscrowIntent(projectID, clientID uuid.UUID) (*EscrowIntentResponse, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if project.ClientID != clientID {
		return nil, errors.New("unauthorized to fund this project")
	}
	if project.Status != models.ProjectStatusAssigned {
		return nil, errors.New("only assigned projects can be funded")
	}
	if project.FinalAmount == nil || *project.FinalAmount <= 0 {
		return nil, errors.New("project has no negotiated amount to fund")
	}
	if project.EscrowPaymentID != "" {
		return nil, errors.New("project escrow is already funded")
	}

	platformFee := *project.FinalAmount * (s.config.Payment.PlatformFeePercent / 100)
	total := *project.FinalAmount + platformFee

	// Stripe amounts are in cents
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(total * 100)),
		Currency: stripe.String("usd"),
	}
	params.AddMetadata("project_id", project.ID.String())
	params.AddMetadata("client_id", clientID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(&project).UpdateColumn("escrow_payment_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to record escrow payment: %w", err)
	}

	return &EscrowIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Amount:       *project.FinalAmount,
		PlatformFee:  platformFee,
		Status:       string(pi.Status),
	}, nil
}
