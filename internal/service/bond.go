package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/integrations/cbr"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/utils"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/valuation"
)

// Schedule is a stored bond together with its valuation
type Schedule struct {
	Bond   *models.BondRecord `json:"bond"`
	Result *valuation.Result  `json:"result"`
	Report report.Report      `json:"report"`
}

// emissionDay drops the time of day so the date survives a DATE column.
func emissionDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Calculate runs the engine on an ad-hoc specification
func (s *Service) Calculate(ctx context.Context, spec models.BondSpecification) (*valuation.Result, error) {
	res, err := s.calc.Calculate(spec)
	fields := logrus.Fields{"bond": spec.Name, "method": spec.Method}
	if err != nil {
		s.log.WithFields(fields).Warnf("Calculation rejected: %v", err)
		return nil, err
	}

	fields["periods"] = res.Summary.TotalPeriods
	fields["degraded"] = res.Summary.Degraded
	entry := s.log.WithFields(fields)
	for _, w := range res.Summary.Warnings {
		entry.Warn(w.Error())
	}
	entry.Debug("Calculation finished")
	return res, nil
}

// CreateBond validates spec by valuing it, then stores it signed for the current user
func (s *Service) CreateBond(ctx context.Context, spec models.BondSpecification) (*models.BondRecord, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	spec.EmissionDate = emissionDay(spec.EmissionDate)
	if _, err := s.calc.Calculate(spec); err != nil {
		return nil, err
	}

	bond := &models.BondRecord{
		UserID: uid,
		Spec:   spec,
		HMAC:   utils.GenerateHMAC(spec, s.config.HMACSecret),
	}
	if err := s.repo.CreateBond(ctx, bond); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bond_id": bond.ID, "user_id": uid}).Info("Bond created")
	return bond, nil
}

// GetBond retrieves a bond of the current user and checks its signature
func (s *Service) GetBond(ctx context.Context, id string) (*models.BondRecord, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	bond, err := s.repo.GetBond(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if !utils.VerifyHMAC(bond.Spec, bond.HMAC, s.config.HMACSecret) {
		s.log.WithField("bond_id", id).Error("Bond record failed integrity check")
		return nil, ErrIntegrity
	}
	return bond, nil
}

// ListBonds retrieves the bonds of the current user
func (s *Service) ListBonds(ctx context.Context) ([]models.BondRecord, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	bonds, err := s.repo.ListBonds(ctx, uid)
	if err != nil {
		return nil, err
	}
	if bonds == nil {
		bonds = []models.BondRecord{}
	}
	return bonds, nil
}

// DeleteBond removes a bond of the current user
func (s *Service) DeleteBond(ctx context.Context, id string) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBond(ctx, uid, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"bond_id": id, "user_id": uid}).Info("Bond deleted")
	return nil
}

// Schedule values a stored bond
func (s *Service) Schedule(ctx context.Context, id string) (*Schedule, error) {
	bond, err := s.GetBond(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.Calculate(ctx, bond.Spec)
	if err != nil {
		return nil, err
	}
	return &Schedule{Bond: bond, Result: res, Report: report.Render(bond.Spec, res)}, nil
}

// SendReport emails the schedule of a stored bond to its owner
func (s *Service) SendReport(ctx context.Context, id string) error {
	sched, err := s.Schedule(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.repo.FindUserByID(ctx, sched.Bond.UserID)
	if err != nil {
		return fmt.Errorf("failed to find bond owner: %w", err)
	}
	if err := s.mailer.SendReport(user.Email, user.Username, sched.Report); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"bond_id": id, "user_id": user.ID}).Info("Report sent")
	return nil
}

// ReferenceRate returns the suggested COK from the central bank key rate
func (s *Service) ReferenceRate(ctx context.Context) (cbr.ReferenceRate, error) {
	rate, err := s.rates.GetReferenceRate(ctx)
	if err != nil {
		return cbr.ReferenceRate{}, fmt.Errorf("failed to get reference rate: %w", err)
	}
	return rate, nil
}
