package vendorprofile

import (
	"context"
	"fmt"

	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
)

type Service interface {
	GetUser(ctx context.Context, userID uint) (*User, error)
	GetProfile(ctx context.Context, userID uint) (*VendorProfile, error)
	SelectRole(ctx context.Context, userID uint, category string, ip string) (*VendorProfile, error)
	Deactivate(ctx context.Context, userID uint, ip string) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) GetUser(ctx context.Context, userID uint) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*VendorProfile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

// SelectRole records the vendor category a user signed up for.
func (s *service) SelectRole(ctx context.Context, userID uint, raw string, ip string) (*VendorProfile, error) {
	category, ok := ParseCategory(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.repo.SelectRole(ctx, userID, category)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, auditlog.ActionRoleSelected, map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &userID, nil, auditlog.ActionRoleSelected, map[string]interface{}{
		"category": category,
	}, ip, "success")
	return profile, nil
}

func (s *service) Deactivate(ctx context.Context, userID uint, ip string) error {
	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.auditSvc.LogAction(ctx, &userID, nil, "VENDOR_PROFILE_DEACTIVATED", nil, ip, "success")
	return nil
}
