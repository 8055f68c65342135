package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/server/storage"
)

// Колонки ledger-строки в порядке, который ожидает scanLedger.
const ledgerColumns = `account_id, carrots, horse_shoes, golden_carrots,
		production_boost, horse_shoes_unlocked, golden_carrots_unlocked,
		last_update_ts, created_at, updated_at`

// CreateLedger inserts the ledger row for a new account
func (s *Storage) CreateLedger(ctx context.Context, ledger *models.Ledger) error {
	query := `
		INSERT INTO ledgers (` + ledgerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		ledger.AccountID,
		ledger.Balances.Carrots,
		ledger.Balances.HorseShoes,
		ledger.Balances.GoldenCarrots,
		boolToInt(ledger.Upgrades.ProductionBoost),
		boolToInt(ledger.Upgrades.HorseShoesUnlocked),
		boolToInt(ledger.Upgrades.GoldenCarrotsUnlocked),
		ledger.LastUpdate.Unix(),
		ledger.CreatedAt.Unix(),
		ledger.UpdatedAt.Unix(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert ledger: %w", err)
	}

	return nil
}

// GetLedger retrieves the ledger row by account id
func (s *Storage) GetLedger(ctx context.Context, accountID string) (*models.Ledger, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledgers
		WHERE account_id = ?
	`

	ledger, err := scanLedger(s.db.QueryRowContext(ctx, s.rebind(query), accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	return ledger, nil
}

// ApplyEarnings atomically adds delta and advances the last update
// timestamp, guarded by `last_update_ts = seenAt`. Никакого
// read-modify-write: проигравший гонку получает ErrLedgerConflict,
// перечитывает строку и пересчитывает окно от нового timestamp.
func (s *Storage) ApplyEarnings(
	ctx context.Context,
	accountID string,
	delta models.Balances,
	seenAt, now time.Time,
) (*models.Ledger, error) {
	query := `
		UPDATE ledgers
		SET carrots = carrots + ?,
			horse_shoes = horse_shoes + ?,
			golden_carrots = golden_carrots + ?,
			last_update_ts = ?,
			updated_at = ?
		WHERE account_id = ? AND last_update_ts = ?
		RETURNING ` + ledgerColumns

	ledger, err := scanLedger(s.db.QueryRowContext(ctx, s.rebind(query),
		delta.Carrots,
		delta.HorseShoes,
		delta.GoldenCarrots,
		now.Unix(),
		now.Unix(),
		accountID,
		seenAt.Unix(),
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLedgerConflict
		}
		return nil, fmt.Errorf("failed to apply earnings: %w", err)
	}

	return ledger, nil
}

// ApplyPurchase atomically debits cost and raises the upgrade flag.
// Проверка средств и флага сидит в WHERE того же UPDATE: списание либо
// проходит целиком, либо не трогает строку вовсе — трата никогда не
// обрезается до остатка. last_update_ts не меняется: покупка не должна
// съедать офлайн-окно.
func (s *Storage) ApplyPurchase(
	ctx context.Context,
	accountID string,
	cost models.Balances,
	upgrade string,
	now time.Time,
) (*models.Ledger, error) {
	column, err := upgradeColumn(upgrade)
	if err != nil {
		return nil, err
	}

	// Имя колонки берётся только из whitelist-свитча выше.
	query := fmt.Sprintf(`
		UPDATE ledgers
		SET carrots = carrots - ?,
			horse_shoes = horse_shoes - ?,
			golden_carrots = golden_carrots - ?,
			%s = 1,
			updated_at = ?
		WHERE account_id = ?
			AND %s = 0
			AND carrots >= ?
			AND horse_shoes >= ?
			AND golden_carrots >= ?
		RETURNING `+ledgerColumns, column, column)

	ledger, err := scanLedger(s.db.QueryRowContext(ctx, s.rebind(query),
		cost.Carrots,
		cost.HorseShoes,
		cost.GoldenCarrots,
		now.Unix(),
		accountID,
		cost.Carrots,
		cost.HorseShoes,
		cost.GoldenCarrots,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLedgerConflict
		}
		return nil, fmt.Errorf("failed to apply purchase: %w", err)
	}

	return ledger, nil
}

// TopByCarrots returns up to limit accounts ordered by carrot balance
func (s *Storage) TopByCarrots(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	query := `
		SELECT u.username, l.carrots
		FROM ledgers l
		JOIN users u ON u.id = l.account_id
		ORDER BY l.carrots DESC, u.username ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var top []models.LeaderboardRow

	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.Username, &row.Carrots); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		top = append(top, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return top, nil
}

// upgradeColumn отображает идентификатор апгрейда в имя флаговой колонки.
func upgradeColumn(upgrade string) (string, error) {
	switch upgrade {
	case models.UpgradeProductionBoost:
		return "production_boost", nil
	case models.UpgradeHorseShoes:
		return "horse_shoes_unlocked", nil
	case models.UpgradeGoldenCarrots:
		return "golden_carrots_unlocked", nil
	default:
		return "", fmt.Errorf("unknown upgrade %q", upgrade)
	}
}

func scanLedger(row *sql.Row) (*models.Ledger, error) {
	ledger := &models.Ledger{}
	var boost, shoes, golden int
	var lastUpdate, createdAt, updatedAt int64

	err := row.Scan(
		&ledger.AccountID,
		&ledger.Balances.Carrots,
		&ledger.Balances.HorseShoes,
		&ledger.Balances.GoldenCarrots,
		&boost,
		&shoes,
		&golden,
		&lastUpdate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ledger.Upgrades.ProductionBoost = intToBool(boost)
	ledger.Upgrades.HorseShoesUnlocked = intToBool(shoes)
	ledger.Upgrades.GoldenCarrotsUnlocked = intToBool(golden)
	ledger.LastUpdate = unixToTime(lastUpdate)
	ledger.CreatedAt = unixToTime(createdAt)
	ledger.UpdatedAt = unixToTime(updatedAt)

	return ledger, nil
}
