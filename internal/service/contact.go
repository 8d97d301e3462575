package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

type ContactService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

var inquiryFlow = map[models.InquiryStatus][]models.InquiryStatus{
	models.InquiryNew:       {models.InquiryResponded, models.InquiryClosed},
	models.InquiryResponded: {models.InquiryClosed},
}

var designFlow = map[models.DesignStatus][]models.DesignStatus{
	models.DesignSubmitted:   {models.DesignUnderReview, models.DesignRejected},
	models.DesignUnderReview: {models.DesignQuoted, models.DesignRejected},
	models.DesignQuoted:      {models.DesignApproved, models.DesignRejected},
}

func allowed[S comparable](flow map[S][]S, from, to S) bool {
	if from == to {
		return true
	}
	for _, s := range flow[from] {
		if s == to {
			return true
		}
	}
	return false
}

func contactBasics(name, email, phone string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", "", fmt.Errorf("name required: %w", ErrValidation)
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", "", "", err
	}
	return name, email, strings.TrimSpace(phone), nil
}

func (s *ContactService) checkProduct(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetProduct(ctx, *id, true); err != nil {
		return notFound(err, "product")
	}
	return nil
}

// CreateInquiry stores a contact form submission. accountID is nil for
// anonymous visitors.
func (s *ContactService) CreateInquiry(ctx context.Context, accountID *uuid.UUID, req transport.InquiryRequest) (*models.Inquiry, error) {
	name, email, phone, err := contactBasics(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" || message == "" {
		return nil, fmt.Errorf("subject and message required: %w", ErrValidation)
	}
	if err := s.checkProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	in := &models.Inquiry{
		AccountID: accountID,
		ProductID: req.ProductID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Subject:   subject,
		Message:   message,
		Status:    models.InquiryNew,
	}
	if err := s.Repo.CreateInquiry(ctx, in); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.TopicContact, in.ID.String(), "inquiry_created", map[string]any{
		"inquiry_id": in.ID,
		"subject":    in.Subject,
	})
	return in, nil
}

func (s *ContactService) ListInquiries(ctx context.Context, f repo.ContactFilter, offset, limit int) (int64, []models.Inquiry, error) {
	if f.Status != "" && !models.InquiryStatus(f.Status).Valid() {
		return 0, nil, fmt.Errorf("unknown status %q: %w", f.Status, ErrValidation)
	}
	return s.Repo.ListInquiries(ctx, f, offset, limit)
}

func (s *ContactService) GetInquiry(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	in, err := s.Repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, notFound(err, "inquiry")
	}
	return in, nil
}

// UpdateInquiry records a response and/or moves the status forward
// (new -> responded -> closed). A response alone marks a new inquiry responded.
func (s *ContactService) UpdateInquiry(ctx context.Context, id uuid.UUID, req transport.UpdateInquiryRequest) (*models.Inquiry, error) {
	in, err := s.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	to := in.Status
	if req.Response != nil {
		fields["response"] = strings.TrimSpace(*req.Response)
		if in.Status == models.InquiryNew {
			to = models.InquiryResponded
		}
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", *req.Status, ErrValidation)
		}
		to = *req.Status
	}
	if !allowed(inquiryFlow, in.Status, to) {
		return nil, fmt.Errorf("cannot move inquiry from %s to %s: %w", in.Status, to, ErrInvalidTransition)
	}
	fields["status"] = to

	if err := s.Repo.UpdateInquiry(ctx, id, fields); err != nil {
		return nil, notFound(err, "inquiry")
	}
	return s.GetInquiry(ctx, id)
}

func (s *ContactService) CreateDesignRequest(ctx context.Context, accountID *uuid.UUID, req transport.DesignRequestRequest) (*models.DesignRequest, error) {
	name, email, phone, err := contactBasics(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	furniture := strings.TrimSpace(req.FurnitureType)
	description := strings.TrimSpace(req.Description)
	if furniture == "" || description == "" {
		return nil, fmt.Errorf("furniture_type and description required: %w", ErrValidation)
	}
	if req.Budget != nil && req.Budget.IsNegative() {
		return nil, fmt.Errorf("budget cannot be negative: %w", ErrValidation)
	}
	if err := s.checkProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	d := &models.DesignRequest{
		AccountID:     accountID,
		ProductID:     req.ProductID,
		Name:          name,
		Email:         email,
		Phone:         phone,
		FurnitureType: furniture,
		Dimensions:    strings.TrimSpace(req.Dimensions),
		Material:      strings.TrimSpace(req.Material),
		Budget:        req.Budget,
		Description:   description,
		Status:        models.DesignSubmitted,
	}
	if err := s.Repo.CreateDesignRequest(ctx, d); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.TopicContact, d.ID.String(), "design_request_created", map[string]any{
		"design_request_id": d.ID,
		"furniture_type":    d.FurnitureType,
	})
	return d, nil
}

func (s *ContactService) ListDesignRequests(ctx context.Context, f repo.ContactFilter, offset, limit int) (int64, []models.DesignRequest, error) {
	if f.Status != "" && !models.DesignStatus(f.Status).Valid() {
		return 0, nil, fmt.Errorf("unknown status %q: %w", f.Status, ErrValidation)
	}
	return s.Repo.ListDesignRequests(ctx, f, offset, limit)
}

func (s *ContactService) GetDesignRequest(ctx context.Context, id uuid.UUID) (*models.DesignRequest, error) {
	d, err := s.Repo.GetDesignRequest(ctx, id)
	if err != nil {
		return nil, notFound(err, "design request")
	}
	return d, nil
}

// UpdateDesignRequest moves a request through
// submitted -> under_review -> quoted -> approved, with rejection possible
// from any open state. Quoting requires a price.
func (s *ContactService) UpdateDesignRequest(ctx context.Context, id uuid.UUID, req transport.UpdateDesignRequestRequest) (*models.DesignRequest, error) {
	d, err := s.GetDesignRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	to := d.Status
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", *req.Status, ErrValidation)
		}
		to = *req.Status
	}
	if !allowed(designFlow, d.Status, to) {
		return nil, fmt.Errorf("cannot move design request from %s to %s: %w", d.Status, to, ErrInvalidTransition)
	}
	if req.QuotedPrice != nil {
		if req.QuotedPrice.IsNegative() {
			return nil, fmt.Errorf("quoted_price cannot be negative: %w", ErrValidation)
		}
		q := req.QuotedPrice.Round(2)
		fields["quoted_price"] = q
	}
	if to == models.DesignQuoted && req.QuotedPrice == nil && d.QuotedPrice == nil {
		return nil, fmt.Errorf("quoted_price required to quote: %w", ErrValidation)
	}
	if req.AdminNotes != nil {
		fields["admin_notes"] = strings.TrimSpace(*req.AdminNotes)
	}
	fields["status"] = to

	if err := s.Repo.UpdateDesignRequest(ctx, id, fields); err != nil {
		return nil, notFound(err, "design request")
	}
	return s.GetDesignRequest(ctx, id)
}
