package territory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は区域台帳の公開インターフェースです。
type UseCase interface {
	ListTerritories(ctx context.Context) ([]*Territory, error)
	GetTerritory(ctx context.Context, in GetTerritoryInput) (*Territory, error)
	RequestTerritory(ctx context.Context, in RequestTerritoryInput) (*Territory, error)
	ApproveTerritory(ctx context.Context, in TransitionInput) (*Territory, error)
	RejectTerritory(ctx context.Context, in TransitionInput) (*Territory, error)
	ReturnTerritory(ctx context.Context, in TransitionInput) (*Territory, error)
	Due(t *Territory) DueState
}

// Service は区域の状態遷移を管理します。
type Service struct {
	repo          Repository
	clock         Clock
	dueSoonWindow time.Duration
	locks         *keyedMutex
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithDueSoonWindow は返却期限が近いと判定する期間を設定します。
func WithDueSoonWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.dueSoonWindow = d
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{
		repo:          repo,
		clock:         clock,
		dueSoonWindow: DefaultDueSoonWindow,
		locks:         newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTerritoryInput は区域取得時の入力です。
type GetTerritoryInput struct {
	ID string
}

// RequestTerritoryInput は区域申請時の入力です。
type RequestTerritoryInput struct {
	ID                 string
	Actor              actor.Actor
	PublisherName      string
	ExpectedReturnDate time.Time
	Notes              *string
}

// TransitionInput は承認・却下・返却時の入力です。
type TransitionInput struct {
	ID    string
	Actor actor.Actor
}

// ListTerritories は区域を番号順で返します。
func (s *Service) ListTerritories(ctx context.Context) ([]*Territory, error) {
	territories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(territories, func(i, j int) bool {
		return territories[i].Number < territories[j].Number
	})
	return territories, nil
}

// GetTerritory は区域を取得します。
func (s *Service) GetTerritory(ctx context.Context, in GetTerritoryInput) (*Territory, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// RequestTerritory は利用可能な区域を申請します。
func (s *Service) RequestTerritory(ctx context.Context, in RequestTerritoryInput) (*Territory, error) {
	if err := in.Actor.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.PublisherName)
	if name == "" {
		return nil, ErrInvalidPublisherName
	}
	if in.ExpectedReturnDate.IsZero() {
		return nil, ErrInvalidReturnDate
	}
	notes := normalizeNotes(in.Notes)
	returnDate := in.ExpectedReturnDate.UTC()

	return s.transition(ctx, in.ID, in.Actor, func(t *Territory, now time.Time) error {
		if t.Status != StatusAvailable {
			return invalidTransition(t, StatusRequested)
		}
		t.Status = StatusRequested
		t.Assignment = &Assignment{
			PublisherName:      name,
			RequestNotes:       notes,
			CheckoutDate:       now,
			ExpectedReturnDate: returnDate,
		}
		return nil
	})
}

// ApproveTerritory は申請中の区域を貸し出し中にします。
func (s *Service) ApproveTerritory(ctx context.Context, in TransitionInput) (*Territory, error) {
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	return s.transition(ctx, in.ID, in.Actor, func(t *Territory, now time.Time) error {
		if t.Status != StatusRequested || t.Assignment == nil {
			return invalidTransition(t, StatusAssigned)
		}
		t.Status = StatusAssigned
		t.Assignment.CheckoutDate = now
		return nil
	})
}

// RejectTerritory は申請を却下し区域を利用可能に戻します。
func (s *Service) RejectTerritory(ctx context.Context, in TransitionInput) (*Territory, error) {
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	return s.transition(ctx, in.ID, in.Actor, func(t *Territory, _ time.Time) error {
		if t.Status != StatusRequested {
			return invalidTransition(t, StatusAvailable)
		}
		t.Status = StatusAvailable
		t.Assignment = nil
		return nil
	})
}

// ReturnTerritory は貸し出し中の区域を返却します。
func (s *Service) ReturnTerritory(ctx context.Context, in TransitionInput) (*Territory, error) {
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	return s.transition(ctx, in.ID, in.Actor, func(t *Territory, _ time.Time) error {
		if t.Status != StatusAssigned {
			return invalidTransition(t, StatusAvailable)
		}
		t.Status = StatusAvailable
		t.Assignment = nil
		return nil
	})
}

// Due は区域の返却期限の状態を返します。
func (s *Service) Due(t *Territory) DueState {
	return Classify(t, s.clock.Now(), s.dueSoonWindow)
}

func (s *Service) transition(ctx context.Context, rawID string, a actor.Actor, apply func(t *Territory, now time.Time) error) (*Territory, error) {
	id, err := normalizeID(rawID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Consistent() {
		return nil, fmt.Errorf("%w: %s is %s with assignment=%t", ErrInconsistentTerritory, id, current.Status, current.Assignment != nil)
	}

	next := current.Clone()
	if err := apply(next, s.clock.Now()); err != nil {
		return nil, err
	}
	if !next.Consistent() {
		return nil, fmt.Errorf("%w: %s after transition", ErrInconsistentTerritory, id)
	}

	return s.repo.Save(ctx, next, strings.TrimSpace(a.ID))
}

func invalidTransition(t *Territory, to Status) error {
	return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, t.ID, t.Status, to)
}

func normalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	return trimmed, nil
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
