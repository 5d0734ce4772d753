package user

import (
	"time"

	"chip-ledger/internal/money"
)

type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpdateProfileInput struct {
	DisplayName string `json:"display_name"`
}

type HistoryResponse struct {
	Items           []HistoryItem `json:"items"`
	Limit           int           `json:"limit"`
	Offset          int           `json:"offset"`
	ProfitLossCents int64         `json:"profit_loss_cents"`
	ProfitLoss      string        `json:"profit_loss"`
}

type HistoryItem struct {
	GameHistoryID   string           `json:"game_history_id"`
	TableName       string           `json:"table_name"`
	JoinCode        string           `json:"join_code"`
	EndedAt         time.Time        `json:"ended_at"`
	PlayerName      string           `json:"player_name"`
	BuyInTotalCents int64            `json:"buy_in_total_cents"`
	CashOutCents    int64            `json:"cash_out_cents"`
	ProfitLossCents int64            `json:"profit_loss_cents"`
	ProfitLoss      string           `json:"profit_loss"`
	Chips           money.ChipCounts `json:"chips"`
}

type GameHistoryResponse struct {
	ID         string         `json:"id"`
	TableName  string         `json:"table_name"`
	JoinCode   string         `json:"join_code"`
	HostID     string         `json:"host_id"`
	CreatedAt  time.Time      `json:"created_at"`
	EndedAt    time.Time      `json:"ended_at"`
	ArchivedAt time.Time      `json:"archived_at"`
	Results    []PlayerResult `json:"results"`
}

type PlayerResult struct {
	PlayerName      string           `json:"player_name"`
	UserID          string           `json:"user_id,omitempty"`
	BuyInTotalCents int64            `json:"buy_in_total_cents"`
	BuyInTotal      string           `json:"buy_in_total"`
	Chips           money.ChipCounts `json:"chips"`
	CashOutCents    int64            `json:"cash_out_cents"`
	CashOut         string           `json:"cash_out"`
	ProfitLossCents int64            `json:"profit_loss_cents"`
	ProfitLoss      string           `json:"profit_loss"`
}
