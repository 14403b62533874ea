package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bengalmatrimony/backend/internal/models"
)

// PremiumWorkflow moves a user's premium request between pending and
// approved and keeps the user's entitlement flag in step with it.
type PremiumWorkflow struct {
	requests PremiumRequestStore
	users    UserStore
	biodatas BiodataStore
	tx       Transactor
}

func NewPremiumWorkflow(requests PremiumRequestStore, users UserStore, biodatas BiodataStore, tx Transactor) *PremiumWorkflow {
	if tx == nil {
		tx = NoopTransactor{}
	}
	return &PremiumWorkflow{requests: requests, users: users, biodatas: biodatas, tx: tx}
}

// Submit opens a pending request. Any existing request for the email,
// pending or approved, is a conflict.
func (w *PremiumWorkflow) Submit(ctx context.Context, email string) (*models.PremiumRequest, error) {
	if _, err := w.requests.GetByEmail(ctx, email); err == nil {
		return nil, ErrPremiumRequestExists
	} else if !errors.Is(err, ErrPremiumRequestNotFound) {
		return nil, err
	}
	return w.requests.Create(ctx, &models.PremiumRequest{Email: email, Status: models.PremiumPending})
}

func (w *PremiumWorkflow) List(ctx context.Context) ([]*models.PremiumRequest, error) {
	return w.requests.List(ctx)
}

func (w *PremiumWorkflow) GetByEmail(ctx context.Context, email string) (*models.PremiumRequest, error) {
	return w.requests.GetByEmail(ctx, email)
}

// SetStatus applies status and syncs the user's premium flag. If the sync
// fails the request is put back to its previous status and the failure is
// returned wrapped in ErrPremiumSyncFailed.
func (w *PremiumWorkflow) SetStatus(ctx context.Context, id string, status models.PremiumStatus) (*models.PremiumRequest, error) {
	if !status.Valid() {
		return nil, ErrInvalidPremiumStatus
	}

	var updated *models.PremiumRequest
	err := w.tx.WithTransaction(ctx, func(ctx context.Context) error {
		prev, err := w.requests.SetStatus(ctx, id, status)
		if err != nil {
			return err
		}

		premium := status == models.PremiumApproved
		if err := w.syncEntitlement(ctx, prev.Email, premium); err != nil {
			if rbErr := w.restore(ctx, prev); rbErr != nil {
				log.Printf("[Premium] compensation failed id=%s error=%v", id, rbErr)
				return fmt.Errorf("%w: %w (restore: %v)", ErrPremiumSyncFailed, err, rbErr)
			}
			return fmt.Errorf("%w: %w", ErrPremiumSyncFailed, err)
		}

		updated = prev
		updated.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Premium] status id=%s email=%s status=%s", updated.ID, updated.Email, updated.Status)
	return updated, nil
}

// Delete revokes the user's premium flag and then removes the request.
// When either step fails the flag is granted back as the request had it.
func (w *PremiumWorkflow) Delete(ctx context.Context, id string) (*models.PremiumRequest, error) {
	var deleted *models.PremiumRequest
	err := w.tx.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := w.requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := w.syncEntitlement(ctx, req.Email, false); err != nil && !errors.Is(err, ErrUserNotFound) {
			w.regrant(ctx, req)
			return fmt.Errorf("%w: %w", ErrPremiumSyncFailed, err)
		}
		if _, err := w.requests.Delete(ctx, id); err != nil {
			w.regrant(ctx, req)
			return err
		}
		deleted = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Premium] deleted id=%s email=%s", deleted.ID, deleted.Email)
	return deleted, nil
}

// regrant puts the entitlement back to what req implies.
func (w *PremiumWorkflow) regrant(ctx context.Context, req *models.PremiumRequest) {
	premium := req.Status == models.PremiumApproved
	if err := w.syncEntitlement(ctx, req.Email, premium); err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Printf("[Premium] compensation failed id=%s email=%s error=%v", req.ID, req.Email, err)
	}
}

// SetUserPremium is the admin toggle for a user's flag. The flag is
// mirrored onto the user's biodata; if that fails the user's flag is put
// back and ErrPremiumSyncFailed is returned.
func (w *PremiumWorkflow) SetUserPremium(ctx context.Context, userID string, premium bool) (*models.User, error) {
	return w.setUserPremium(ctx, premium, func(ctx context.Context) (*models.User, error) {
		return w.users.GetByID(ctx, userID)
	})
}

func (w *PremiumWorkflow) SetUserPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error) {
	return w.setUserPremium(ctx, premium, func(ctx context.Context) (*models.User, error) {
		return w.users.GetByEmail(ctx, email)
	})
}

func (w *PremiumWorkflow) setUserPremium(ctx context.Context, premium bool, lookup func(context.Context) (*models.User, error)) (*models.User, error) {
	var updated *models.User
	err := w.tx.WithTransaction(ctx, func(ctx context.Context) error {
		prev, err := lookup(ctx)
		if err != nil {
			return err
		}
		u, err := w.users.SetPremiumByEmail(ctx, prev.Email, premium)
		if err != nil {
			return err
		}
		if w.biodatas != nil {
			if err := w.biodatas.SetPremiumByEmail(ctx, prev.Email, premium); err != nil {
				if _, rbErr := w.users.SetPremiumByEmail(ctx, prev.Email, bool(prev.Premium)); rbErr != nil {
					log.Printf("[Premium] compensation failed email=%s error=%v", prev.Email, rbErr)
				}
				return fmt.Errorf("%w: %w", ErrPremiumSyncFailed, err)
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Premium] flag email=%s premium=%t", updated.Email, premium)
	return updated, nil
}

// restore puts the request and the user's flag back the way they were
// before a failed sync.
func (w *PremiumWorkflow) restore(ctx context.Context, prev *models.PremiumRequest) error {
	if _, err := w.requests.SetStatus(ctx, prev.ID, prev.Status); err != nil {
		return err
	}
	_, err := w.users.SetPremiumByEmail(ctx, prev.Email, prev.Status == models.PremiumApproved)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}

func (w *PremiumWorkflow) syncEntitlement(ctx context.Context, email string, premium bool) error {
	if _, err := w.users.SetPremiumByEmail(ctx, email, premium); err != nil {
		return err
	}
	if w.biodatas != nil {
		if err := w.biodatas.SetPremiumByEmail(ctx, email, premium); err != nil {
			return err
		}
	}
	return nil
}
