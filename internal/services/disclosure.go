package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bengalmatrimony/backend/internal/models"
)

// DisclosurePolicy decides how far one successful payment reaches.
type DisclosurePolicy string

const (
	// PolicyPerProfile unlocks only the biodata the payment was made for.
	PolicyPerProfile DisclosurePolicy = "per-profile"
	// PolicyBlanket unlocks every biodata once the viewer has paid at all.
	PolicyBlanket DisclosurePolicy = "blanket"
)

func ParseDisclosurePolicy(s string) (DisclosurePolicy, error) {
	switch DisclosurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPerProfile:
		return PolicyPerProfile, nil
	case PolicyBlanket:
		return PolicyBlanket, nil
	default:
		return "", fmt.Errorf("unknown disclosure policy %q", s)
	}
}

// ContactGate decides whether a viewer may see a biodata's contact fields.
type ContactGate struct {
	payments PaymentLedger
	policy   DisclosurePolicy
}

func NewContactGate(payments PaymentLedger, policy DisclosurePolicy) *ContactGate {
	if policy == "" {
		policy = PolicyPerProfile
	}
	return &ContactGate{payments: payments, policy: policy}
}

func (g *ContactGate) Policy() DisclosurePolicy { return g.policy }

// Reveal reports whether viewer may see b's contact fields: the owner and
// admins always may, anonymous viewers never do, and anyone else needs a
// succeeded payment that the policy accepts.
func (g *ContactGate) Reveal(ctx context.Context, viewer models.Identity, b *models.Biodata) (bool, error) {
	r, err := g.Redactor(ctx, viewer)
	if err != nil {
		return false, err
	}
	return r.reveals(b), nil
}

// Redactor loads the viewer's unlocks once so a list can be filtered
// without a ledger lookup per record.
func (g *ContactGate) Redactor(ctx context.Context, viewer models.Identity) (*Redactor, error) {
	r := &Redactor{viewer: viewer, unlocked: make(map[int]struct{})}
	if viewer.Anonymous() || viewer.IsAdmin() {
		r.all = viewer.IsAdmin()
		return r, nil
	}

	ids, err := g.payments.UnlockedBiodataIDs(ctx, viewer.Email)
	if err != nil {
		return nil, fmt.Errorf("load unlocks: %w", err)
	}
	if g.policy == PolicyBlanket {
		r.all = len(ids) > 0
		return r, nil
	}
	for _, id := range ids {
		if id > 0 {
			r.unlocked[id] = struct{}{}
		}
	}
	return r, nil
}

type Redactor struct {
	viewer   models.Identity
	all      bool
	unlocked map[int]struct{}
}

func (r *Redactor) reveals(b *models.Biodata) bool {
	if r.all {
		return true
	}
	if r.viewer.Anonymous() {
		return false
	}
	if b.ContactEmail != "" && NormalizeEmail(b.ContactEmail) == NormalizeEmail(r.viewer.Email) {
		return true
	}
	_, ok := r.unlocked[b.BiodataID]
	return ok
}

// Apply returns b as the viewer is allowed to see it.
func (r *Redactor) Apply(b *models.Biodata) *models.Biodata {
	if r.reveals(b) {
		return b
	}
	return b.Redacted()
}

func (r *Redactor) ApplyAll(list []*models.Biodata) []*models.Biodata {
	out := make([]*models.Biodata, 0, len(list))
	for _, b := range list {
		out = append(out, r.Apply(b))
	}
	return out
}
