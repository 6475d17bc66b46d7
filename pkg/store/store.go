package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventtix/eventtix-sdk-go/pkg/config"
)

// ErrTicketNotFound is returned by lookups when no ticket row matches.
var ErrTicketNotFound = errors.New("ticket not found")

// Ticket is the local shadow record of an issued ticket. Rows are written at
// purchase time regardless of chain connectivity, so the application can list
// and validate tickets even when every on-chain read fails.
type Ticket struct {
	ID              uint   `gorm:"primaryKey"`
	TokenID         int64  `gorm:"uniqueIndex"`
	EventID         int64  `gorm:"index"`
	UserID          int64  `gorm:"index"`
	WalletAddress   string `gorm:"size:42"`
	TransactionHash string `gorm:"size:66"`
	SeatInfo        string `gorm:"default:'General Admission'"`
	TicketType      string `gorm:"default:'Standard'"`
	IsUsed          bool
	IsActive        bool
	PurchaseDate    time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Ticket) TableName() string { return "tickets" }

// Store is the ticket shadow database.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema. The
// sqlite driver covers local and demo deployments; postgres covers shared
// ones.
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}
	if err := db.AutoMigrate(&Ticket{}); err != nil {
		return nil, fmt.Errorf("migrate tickets schema: %w", err)
	}

	zap.L().Info("ticket store ready", zap.String("driver", cfg.DatabaseDriver))
	return &Store{db: db}, nil
}

// CreateTicket inserts a new ticket row.
func (s *Store) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.PurchaseDate.IsZero() {
		t.PurchaseDate = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// ByToken returns the ticket with the given token id.
func (s *Store) ByToken(ctx context.Context, tokenID int64) (*Ticket, error) {
	var t Ticket
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("token %d: %w", tokenID, ErrTicketNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token %d: %w", tokenID, err)
	}
	return &t, nil
}

// ByUser returns all active tickets held by a user, newest first.
func (s *Store) ByUser(ctx context.Context, userID int64) ([]Ticket, error) {
	var tickets []Ticket
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("purchase_date DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list tickets for user %d: %w", userID, err)
	}
	return tickets, nil
}

// ByEvent returns all active tickets issued for an event.
func (s *Store) ByEvent(ctx context.Context, eventID int64) ([]Ticket, error) {
	var tickets []Ticket
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("token_id ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list tickets for event %d: %w", eventID, err)
	}
	return tickets, nil
}

// MarkUsed flags a ticket as consumed. The transition is one-way; marking an
// already-used ticket is an error so double scans are caught at the gate.
func (s *Store) MarkUsed(ctx context.Context, tokenID int64) error {
	result := s.db.WithContext(ctx).Model(&Ticket{}).
		Where("token_id = ? AND is_used = ?", tokenID, false).
		Update("is_used", true)
	if result.Error != nil {
		return fmt.Errorf("mark token %d used: %w", tokenID, result.Error)
	}
	if result.RowsAffected == 0 {
		t, err := s.ByToken(ctx, tokenID)
		if err != nil {
			return err
		}
		return fmt.Errorf("token %d already used at %s", tokenID, t.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

// UpdateOwner records a ticket transfer in the shadow store.
func (s *Store) UpdateOwner(ctx context.Context, tokenID int64, userID int64, walletAddress string) error {
	result := s.db.WithContext(ctx).Model(&Ticket{}).
		Where("token_id = ?", tokenID).
		Updates(map[string]any{
			"user_id":        userID,
			"wallet_address": walletAddress,
		})
	if result.Error != nil {
		return fmt.Errorf("update owner of token %d: %w", tokenID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("token %d: %w", tokenID, ErrTicketNotFound)
	}
	return nil
}

// NextTokenID returns one past the highest issued token id. Used when the
// chain cannot assign the id itself (offline purchases).
func (s *Store) NextTokenID(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.WithContext(ctx).Model(&Ticket{}).
		Select("COALESCE(MAX(token_id), 0)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("next token id: %w", err)
	}
	return max + 1, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
