package interest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/utils"
	"github.com/kurtgav/wizardmatch-sub001/internal/matching"
	"github.com/kurtgav/wizardmatch-sub001/internal/notification"
	"github.com/kurtgav/wizardmatch-sub001/internal/profile"
)

var (
	ErrSelfSwipe      = errors.New("cannot swipe on yourself")
	ErrSelfCrush      = errors.New("cannot add yourself to your crush list")
	ErrTooManyCrushes = errors.New("too many crush entries")
)

const matchedMessage = "It's a match!"

// Gate authorizes phase-dependent actions for a campaign.
type Gate interface {
	Authorize(ctx context.Context, campaignID uuid.UUID, action campaign.Action) error
}

// UserDirectory resolves participants.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.User, error)
}

// MatchStore is the part of the match repository the reconciler writes.
type MatchStore interface {
	SetMutualInterest(ctx context.Context, campaignID uuid.UUID, pair matching.Pair) (*matching.Match, bool, error)
	EnsureMutualMatch(ctx context.Context, m *matching.Match) (*matching.Match, bool, error)
}

// Notifier announces new mutual pairs.
type Notifier interface {
	NotifyMutualMatch(ctx context.Context, a, b *profile.User, source notification.Source) error
}

type Service interface {
	SubmitCrushList(ctx context.Context, campaignID, ownerID uuid.UUID, entries []CrushEntryInput) (*CrushListResult, error)
	GetCrushList(ctx context.Context, campaignID, ownerID uuid.UUID) ([]*CrushEntry, error)
	GetMutualCrushes(ctx context.Context, campaignID, ownerID uuid.UUID) ([]MutualCrush, error)
	RecordSwipe(ctx context.Context, campaignID, actorID, targetID uuid.UUID, kind Kind) (*SwipeResult, error)
}

var _ Service = (*Reconciler)(nil)

type Config struct {
	MaxCrushEntries int
}

// Reconciler keeps Match.isMutualInterest in step with crush lists and
// swipes. Each mutation is followed by an explicit snapshot, a pure
// reconcile step and an apply step, all under the acting user's lock.
//
// A regeneration that snapshots matches before an apply commits may write
// the pair back without the flag; see ReplaceCampaignMatches.
type Reconciler struct {
	repo     Repository
	matches  MatchStore
	users    UserDirectory
	gate     Gate
	notifier Notifier
	clock    campaign.Clock
	cfg      Config
	locks    *userLocks
	log      *zap.Logger
}

func NewReconciler(
	repo Repository,
	matches MatchStore,
	users UserDirectory,
	gate Gate,
	notifier Notifier,
	clock campaign.Clock,
	cfg Config,
	log *zap.Logger,
) *Reconciler {
	if clock == nil {
		clock = campaign.SystemClock()
	}
	if cfg.MaxCrushEntries <= 0 {
		cfg.MaxCrushEntries = 10
	}
	return &Reconciler{
		repo:     repo,
		matches:  matches,
		users:    users,
		gate:     gate,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		locks:    newUserLocks(),
		log:      log.Named("interest"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeEntries trims, lower-cases and de-duplicates by email, keeping
// the first name given for each.
func (r *Reconciler) normalizeEntries(owner *profile.User, campaignID uuid.UUID, inputs []CrushEntryInput) ([]*CrushEntry, error) {
	ownEmail := normalizeEmail(owner.Email)
	now := r.clock.Now()

	seen := make(map[string]struct{}, len(inputs))
	entries := make([]*CrushEntry, 0, len(inputs))
	for _, in := range inputs {
		email := normalizeEmail(in.Email)
		if err := utils.ValidateVar("entries.email", email, "required,email"); err != nil {
			return nil, err
		}
		if email == ownEmail {
			return nil, apperr.Validation("entries.email", ErrSelfCrush.Error())
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		entries = append(entries, &CrushEntry{
			ID:          uuid.New(),
			OwnerUserID: owner.ID,
			CampaignID:  campaignID,
			TargetEmail: email,
			TargetName:  strings.TrimSpace(in.Name),
			CreatedAt:   now,
		})
	}
	return entries, nil
}

// SubmitCrushList replaces the owner's list, then flags every existing
// match whose partner listed the owner back.
func (r *Reconciler) SubmitCrushList(ctx context.Context, campaignID, ownerID uuid.UUID, inputs []CrushEntryInput) (*CrushListResult, error) {
	if len(inputs) > r.cfg.MaxCrushEntries {
		return nil, apperr.Validation("entries", fmt.Sprintf("%s: at most %d allowed", ErrTooManyCrushes, r.cfg.MaxCrushEntries))
	}
	if err := r.gate.Authorize(ctx, campaignID, campaign.ActionSubmitCrushList); err != nil {
		return nil, err
	}

	owner, err := r.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := r.normalizeEntries(owner, campaignID, inputs)
	if err != nil {
		return nil, err
	}

	unlock := r.locks.lock(ownerID)
	defer unlock()

	if err := r.repo.ReplaceCrushList(ctx, campaignID, ownerID, entries); err != nil {
		return nil, err
	}

	mutual, err := r.crushMutuals(ctx, campaignID, owner, entries)
	if err != nil {
		return nil, err
	}

	for _, a := range mutual {
		pair := matching.NewPair(ownerID, a.UserID)
		_, changed, err := r.matches.SetMutualInterest(ctx, campaignID, pair)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				// Crush mutuality only annotates pairs the generator produced.
				continue
			}
			return nil, err
		}
		if changed {
			mutualDeclared.WithLabelValues(string(notification.SourceCrushList)).Inc()
			r.notify(ctx, owner, a.UserID, notification.SourceCrushList)
		}
	}

	r.log.Info("crush list submitted",
		zap.String("campaign_id", campaignID.String()),
		zap.String("user_id", ownerID.String()),
		zap.Int("entries", len(entries)),
		zap.Int("mutual", len(mutual)),
	)

	return &CrushListResult{Entries: entries, MutualCount: len(mutual)}, nil
}

// crushMutuals takes the snapshot and reconciles it.
func (r *Reconciler) crushMutuals(ctx context.Context, campaignID uuid.UUID, owner *profile.User, entries []*CrushEntry) ([]Admirer, error) {
	admirers, err := r.repo.ListAdmirers(ctx, campaignID, normalizeEmail(owner.Email))
	if err != nil {
		return nil, err
	}

	emails := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		emails[normalizeEmail(e.TargetEmail)] = struct{}{}
	}

	return ReconcileCrushes(CrushSnapshot{
		OwnerID:     owner.ID,
		OwnerEmails: emails,
		Admirers:    admirers,
	}), nil
}

func (r *Reconciler) GetCrushList(ctx context.Context, campaignID, ownerID uuid.UUID) ([]*CrushEntry, error) {
	return r.repo.ListCrushEntries(ctx, campaignID, ownerID)
}

func (r *Reconciler) GetMutualCrushes(ctx context.Context, campaignID, ownerID uuid.UUID) ([]MutualCrush, error) {
	owner, err := r.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := r.repo.ListCrushEntries(ctx, campaignID, ownerID)
	if err != nil {
		return nil, err
	}

	mutual, err := r.crushMutuals(ctx, campaignID, owner, entries)
	if err != nil {
		return nil, err
	}

	out := make([]MutualCrush, 0, len(mutual))
	for _, a := range mutual {
		out = append(out, MutualCrush{UserID: a.UserID, Email: a.Email})
	}
	return out, nil
}

// RecordSwipe stores the actor's latest swipe on target. Interest on both
// sides declares a mutual match, creating the row if generation never
// produced one.
func (r *Reconciler) RecordSwipe(ctx context.Context, campaignID, actorID, targetID uuid.UUID, kind Kind) (*SwipeResult, error) {
	if actorID == targetID {
		return nil, apperr.Validation("targetUserId", ErrSelfSwipe.Error())
	}
	if !kind.Valid() {
		return nil, apperr.Validation("kind", "kind must be one of [pass interest]")
	}

	if _, err := r.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	unlock := r.locks.lock(actorID)
	defer unlock()

	now := r.clock.Now()
	if err := r.repo.UpsertInteraction(ctx, &Interaction{
		CampaignID: campaignID,
		ActorID:    actorID,
		TargetID:   targetID,
		Kind:       kind,
		UpdatedAt:  now,
	}); err != nil {
		return nil, err
	}
	swipesTotal.WithLabelValues(string(kind)).Inc()

	// Snapshot after our write so two users swiping on each other at once
	// cannot both miss the other's interest.
	reverse, err := r.repo.GetInteraction(ctx, campaignID, targetID, actorID)
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	result := &SwipeResult{Kind: kind}
	if !ReconcileSwipe(SwipeSnapshot{Kind: kind, Reverse: reverse}) {
		return result, nil
	}

	pair := matching.NewPair(actorID, targetID)
	m, changed, err := r.matches.EnsureMutualMatch(ctx, &matching.Match{
		ID:                 uuid.New(),
		CampaignID:         campaignID,
		User1ID:            pair.User1,
		User2ID:            pair.User2,
		CompatibilityScore: 0,
		MatchTier:          matching.TierFair,
		SharedInterests:    matching.QuestionIDs{},
		IsMutualInterest:   true,
		CreatedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	result.Matched = true
	result.MatchID = &m.ID
	result.Message = matchedMessage

	if changed {
		mutualDeclared.WithLabelValues(string(notification.SourceSwipe)).Inc()
		actor, err := r.users.GetByID(ctx, actorID)
		if err != nil {
			r.log.Warn("failed to load swiping user for notification", zap.Error(err))
			return result, nil
		}
		r.notify(ctx, actor, targetID, notification.SourceSwipe)
	}
	return result, nil
}

// notify never fails the reconciliation.
func (r *Reconciler) notify(ctx context.Context, a *profile.User, partnerID uuid.UUID, source notification.Source) {
	if r.notifier == nil {
		return
	}
	log := r.log.With(
		zap.String("user_id", a.ID.String()),
		zap.String("partner_id", partnerID.String()),
		zap.String("source", string(source)),
	)

	b, err := r.users.GetByID(ctx, partnerID)
	if err != nil {
		log.Warn("failed to load partner for notification", zap.Error(err))
		return
	}
	if err := r.notifier.NotifyMutualMatch(ctx, a, b, source); err != nil {
		log.Warn("failed to send mutual match notification", zap.Error(err))
	}
}
