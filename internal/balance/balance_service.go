package balance

import (
	"context"
	"errors"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/empid"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type Service interface {
	GetByEmployee(ctx context.Context, employeeID string) (BalanceResponse, error)
}

type service struct {
	repo     Repository
	cache    Cache
	policy   empid.Policy
	defaults Defaults
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(repo Repository, cache Cache, policy empid.Policy, defaults Defaults, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	if cache == nil {
		cache = noopCache{}
	}
	if policy == nil {
		policy = empid.Alphanumeric()
	}
	return &service{
		repo:     repo,
		cache:    cache,
		policy:   policy,
		defaults: defaults,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// GetByEmployee returns the stored balance. An employee with no record yet
// gets the default allowance; nothing is persisted until their first
// submission.
func (s *service) GetByEmployee(ctx context.Context, employeeID string) (BalanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if !s.policy.Valid(employeeID) {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	if cached, ok, err := s.cache.Get(ctx, employeeID); err != nil {
		log.Warn("balance cache get failed", zap.String("emp_id", employeeID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	v, err, _ := s.sf.Do(GetBalanceKey(employeeID), func() (any, error) {
		// Every caller waiting on this key shares the result, so the first
		// caller going away must not cancel the lookup for the rest.
		ctx := context.WithoutCancel(ctx)

		version, verr := s.cache.Version(ctx, employeeID)
		if verr != nil {
			log.Warn("balance cache version failed", zap.String("emp_id", employeeID), zap.Error(verr))
		}

		b, err := s.repo.Find(ctx, employeeID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("get balance failed", zap.String("emp_id", employeeID), zap.Error(err))
				return nil, apperror.Internal(err)
			}
			log.Debug("balance not found, using defaults", zap.String("emp_id", employeeID))
			b = newBalance(employeeID, "", s.defaults)
		}

		resp := mapToResponse(*b)
		if verr == nil {
			stored, err := s.cache.SetIfVersion(ctx, employeeID, resp, version)
			if err != nil {
				log.Warn("balance cache set failed", zap.String("emp_id", employeeID), zap.Error(err))
			} else if !stored {
				log.Debug("balance changed during read, not cached", zap.String("emp_id", employeeID))
			}
		}
		return resp, nil
	})
	if err != nil {
		return BalanceResponse{}, err
	}

	return v.(BalanceResponse), nil
}
