package table

import (
	"time"

	"chip-ledger/internal/money"
)

const (
	StatusLive  = "live"
	StatusEnded = "ended"
)

type CreateTableInput struct {
	Name string `json:"name"`
}

type JoinTableInput struct {
	JoinCode string `json:"join_code"`
}

type AddPlayerInput struct {
	Name string `json:"name"`

	// LinkSelf attaches the calling user to the new player.
	LinkSelf bool `json:"link_self"`
}

// AddBuyInInput carries a signed amount either as cents or as a display
// string such as "-12.50". Exactly one must be set.
type AddBuyInInput struct {
	PlayerID    string `json:"player_id"`
	AmountCents *int64 `json:"amount_cents,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

type ChipCountInput struct {
	PlayerID string `json:"player_id"`
	money.ChipCounts
}

type TableView struct {
	ID              string               `json:"id"`
	JoinCode        string               `json:"join_code"`
	Name            string               `json:"name"`
	HostID          string               `json:"host_id"`
	Status          string               `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	EndedAt         *time.Time           `json:"ended_at"`
	Denominations   *money.Denominations `json:"denominations"`
	EndChipCounts   *money.ChipCounts    `json:"end_chip_counts"`
	Players         []PlayerView         `json:"players"`
	BuyInTotalCents int64                `json:"buy_in_total_cents"`
	BuyInTotal      string               `json:"buy_in_total"`
	PollIntervalMS  int                  `json:"poll_interval_ms"`
}

type PlayerView struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	UserID          string         `json:"user_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	BuyIns          []BuyInView    `json:"buy_ins"`
	BuyInTotalCents int64          `json:"buy_in_total_cents"`
	ChipCount       *ChipCountView `json:"chip_count"`
}

type BuyInView struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChipCountView struct {
	PlayerID string `json:"player_id"`
	money.ChipCounts
	UpdatedAt time.Time `json:"updated_at"`
}

type DenominationsView struct {
	TableID string `json:"table_id"`
	money.Denominations
	UpdatedAt time.Time `json:"updated_at"`
}

type EndChipCountsView struct {
	TableID string `json:"table_id"`
	money.ChipCounts
	UpdatedAt time.Time `json:"updated_at"`
}

type ReconcileResponse struct {
	TableID          string              `json:"table_id"`
	BuyInCents       int64               `json:"buy_in_cents"`
	BuyInDollars     string              `json:"buy_in_dollars"`
	ChipTotalDollars string              `json:"chip_total_dollars"`
	DeltaDollars     string              `json:"delta_dollars"`
	Balanced         bool                `json:"balanced"`
	PlayerStacks     []PlayerStackView   `json:"player_stacks"`
	EndChipCounts    *money.ChipCounts   `json:"end_chip_counts,omitempty"`
	Denominations    money.Denominations `json:"denominations"`
}

type PlayerStackView struct {
	PlayerID     string           `json:"player_id"`
	Name         string           `json:"name"`
	Chips        money.ChipCounts `json:"chips"`
	ValueDollars string           `json:"value_dollars"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type ArchiveResponse struct {
	GameHistoryID string    `json:"game_history_id"`
	TableName     string    `json:"table_name"`
	JoinCode      string    `json:"join_code"`
	Players       int       `json:"players"`
	ArchivedAt    time.Time `json:"archived_at"`
}

type DeleteResponse struct {
	OK bool `json:"ok"`
}
