// Package wallet — локальный кошелёк игрока: мгновенные начисления и
// траты без похода на сервер. Каждая мутация сразу пишется в bbolt,
// прогресс не теряется ни на рестарте, ни на упавшем синке.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iudanet/stablehand/internal/client/storage"
	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/rates"
)

//go:generate moq -out service_mock.go . Service

// ErrInsufficientFunds indicates that a debit would make a balance negative.
// Трата никогда не обрезается до остатка: либо целиком, либо никак.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Snapshot — согласованная копия состояния кошелька на момент вызова.
type Snapshot struct {
	Balances   models.Balances
	Upgrades   models.Upgrades
	Session    storage.SessionState
	Dirty      bool
	LastSyncAt int64
}

// Service определяет интерфейс локального кошелька
type Service interface {
	// Snapshot возвращает копию текущего состояния
	Snapshot() Snapshot

	// Credit начисляет валюту как сессионный заработок
	Credit(ctx context.Context, amount models.Balances) error

	// Debit списывает валюту; при нехватке возвращает ErrInsufficientFunds
	// и не меняет ничего
	Debit(ctx context.Context, amount models.Balances) error

	// RegisterClicks засчитывает n тапов и возвращает начисленные морковки
	RegisterClicks(ctx context.Context, clicks int64) (int64, error)

	// AccrueActive начисляет активное производство за отыгранные секунды
	AccrueActive(ctx context.Context, seconds int64) (models.Balances, error)

	// CreditReconciled начисляет уже подтверждённую сервером сумму
	// (клейм офлайн-наград, откат покупки) мимо сессионных накопителей
	CreditReconciled(ctx context.Context, amount models.Balances) error

	// ApplyUpgrades перезаписывает флаги апгрейдов серверной истиной
	ApplyUpgrades(ctx context.Context, upgrades models.Upgrades) error

	// ApplyServer применяет авторитетный снапшот после успешного синка:
	// балансы и апгрейды перезаписываются, dirty снимается, сессия
	// обнуляется
	ApplyServer(ctx context.Context, balances models.Balances, upgrades models.Upgrades, syncedAt int64) error
}

type service struct {
	store     storage.WalletStorage
	accountID string

	mu      sync.Mutex
	wallet  storage.WalletState
	session storage.SessionState
}

// NewService загружает состояние аккаунта из хранилища.
// Отсутствие кошелька не ошибка: свежая установка начинает с нулей.
func NewService(ctx context.Context, store storage.WalletStorage, accountID string) (Service, error) {
	s := &service{
		store:     store,
		accountID: accountID,
	}

	wallet, err := store.GetWallet(ctx, accountID)
	switch {
	case err == nil:
		s.wallet = *wallet
	case errors.Is(err, storage.ErrWalletNotFound):
		s.wallet = storage.WalletState{}
	default:
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	session, err := store.GetSession(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.session = *session

	return s, nil
}

// Snapshot возвращает копию состояния под локом.
func (s *service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Balances:   s.wallet.Balances,
		Upgrades:   s.wallet.Upgrades,
		Session:    s.session,
		Dirty:      s.wallet.Dirty,
		LastSyncAt: s.wallet.LastSyncAt,
	}
}

// Credit начисляет сессионный заработок: балансы и накопитель earned
// растут вместе, кошелёк становится dirty.
func (s *service) Credit(ctx context.Context, amount models.Balances) error {
	if amount.HasNegative() {
		return fmt.Errorf("credit amount cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wallet := s.wallet
	wallet.Balances = wallet.Balances.Add(amount)
	wallet.Dirty = true

	session := s.session
	session.Earned = session.Earned.Add(amount)

	return s.persist(ctx, wallet, session)
}

// Debit списывает сумму целиком или не списывает ничего.
// Dirty не трогаем: синк передаёт только сессионный заработок,
// списание подтверждается отдельным запросом покупки.
func (s *service) Debit(ctx context.Context, amount models.Balances) error {
	if amount.HasNegative() {
		return fmt.Errorf("debit amount cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.wallet.Balances.Sub(amount)
	if next.HasNegative() {
		return ErrInsufficientFunds
	}

	wallet := s.wallet
	wallet.Balances = next

	return s.persist(ctx, wallet, s.session)
}

// RegisterClicks начисляет floor(clicks × clickValue) морковок
// и запоминает тапы для следующего синка.
func (s *service) RegisterClicks(ctx context.Context, clicks int64) (int64, error) {
	if clicks <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	earned := rates.ClickEarnings(s.wallet.Upgrades, clicks)

	wallet := s.wallet
	wallet.Balances.Carrots += earned
	wallet.Dirty = true

	session := s.session
	session.ClickCount += clicks
	session.Earned.Carrots += earned

	if err := s.persist(ctx, wallet, session); err != nil {
		return 0, err
	}

	return earned, nil
}

// AccrueActive начисляет активное производство за отыгранный интервал.
func (s *service) AccrueActive(ctx context.Context, seconds int64) (models.Balances, error) {
	if seconds <= 0 {
		return models.Balances{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	earned := rates.ActiveEarnings(s.wallet.Upgrades, seconds)

	wallet := s.wallet
	wallet.Balances = wallet.Balances.Add(earned)
	wallet.Dirty = true

	session := s.session
	session.SessionSeconds += seconds
	session.Earned = session.Earned.Add(earned)

	if err := s.persist(ctx, wallet, session); err != nil {
		return models.Balances{}, err
	}

	return earned, nil
}

// CreditReconciled начисляет сумму, которую сервер уже записал в ledger.
// Сессионные накопители не трогаем, иначе следующий синк зачислит её
// второй раз.
func (s *service) CreditReconciled(ctx context.Context, amount models.Balances) error {
	if amount.HasNegative() {
		return fmt.Errorf("credit amount cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wallet := s.wallet
	wallet.Balances = wallet.Balances.Add(amount)

	return s.persist(ctx, wallet, s.session)
}

// ApplyUpgrades перезаписывает флаги апгрейдов ответом сервера.
func (s *service) ApplyUpgrades(ctx context.Context, upgrades models.Upgrades) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet := s.wallet
	wallet.Upgrades = upgrades

	return s.persist(ctx, wallet, s.session)
}

// ApplyServer перезаписывает кошелёк авторитетным снапшотом. Server wins:
// локальные балансы заменяются целиком, а не сводятся дельтами.
func (s *service) ApplyServer(
	ctx context.Context,
	balances models.Balances,
	upgrades models.Upgrades,
	syncedAt int64,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet := storage.WalletState{
		Balances:   balances,
		Upgrades:   upgrades,
		Dirty:      false,
		LastSyncAt: syncedAt,
	}

	return s.persist(ctx, wallet, storage.SessionState{})
}

// persist пишет новое состояние в хранилище и только после успеха
// обновляет память. Вызывается под mu.
func (s *service) persist(ctx context.Context, wallet storage.WalletState, session storage.SessionState) error {
	if err := s.store.SaveState(ctx, s.accountID, &wallet, &session); err != nil {
		return fmt.Errorf("failed to persist wallet state: %w", err)
	}

	s.wallet = wallet
	s.session = session
	return nil
}
