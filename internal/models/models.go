package models

import "time"

// CanonicalTransaction is the provider-agnostic transaction record produced
// by the parser. Integer amounts stay base-10 strings so wei-scale values
// never pass through a float.
type CanonicalTransaction struct {
	Hash             string `json:"hash"`
	TimestampSeconds int64  `json:"timestamp"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	GasUsed          string `json:"gasUsed"`
	GasPrice         string `json:"gasPrice"`
}

type TokenTransfer struct {
	Hash             string `json:"hash"`
	TimestampSeconds int64  `json:"timestamp"`
	From             string `json:"from"`
	To               string `json:"to"`
	ContractAddress  string `json:"contractAddress"`
	Value            string `json:"value"`
	// Decimals is nil when the provider did not report it.
	Decimals *int   `json:"decimals,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
}

type NFTTransfer struct {
	Hash             string `json:"hash"`
	TimestampSeconds int64  `json:"timestamp"`
	From             string `json:"from"`
	To               string `json:"to"`
	ContractAddress  string `json:"contractAddress"`
	TokenID          string `json:"tokenId,omitempty"`
}

// WalletStatistics is recomputed on demand and never stored as the source of truth.
type WalletStatistics struct {
	Address            string    `json:"address"`
	TotalTransactions  int       `json:"totalTransactions"`
	UniqueProtocols    int       `json:"uniqueProtocols"`
	TotalVolumeUSD     float64   `json:"totalVolume"`
	FirstTxDate        time.Time `json:"firstTxDate"`
	UniqueDays         int       `json:"uniqueDays"`
	GasSpentETH        float64   `json:"gasSpent"`
	NFTMints           int       `json:"nftMints"`
	BridgeTransactions int       `json:"bridgeTransactions"`
	DistinctTokens     int       `json:"distinctTokens"`
	WalletAgeDays      int       `json:"walletAgeDays"`
	HasDEXActivity     bool      `json:"hasDexActivity"`
	HasLendingActivity bool      `json:"hasLendingActivity"`
	HasNFTActivity     bool      `json:"hasNftActivity"`
	DisplayName        string    `json:"displayName,omitempty"`
	BalanceETH         float64   `json:"balance"`
}

type ChecklistItem struct {
	Level       int    `json:"level"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type ScoreBreakdown struct {
	Total                 int             `json:"total"`
	CompletedRequirements int             `json:"completedRequirements"`
	TotalRequirements     int             `json:"totalRequirements"`
	Level                 int             `json:"level"`
	Checklist             []ChecklistItem `json:"checklist"`
}

// TxPointer references a single transaction inside a wrapped summary.
type TxPointer struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	GasCost   float64   `json:"gasCost,omitempty"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ProtocolShare struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type Tribe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// WrappedMetrics is the year-in-review result for one address.
type WrappedMetrics struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
	Year        int    `json:"year"`

	TotalTransactions      int        `json:"totalTransactions"`
	UniqueDaysActive       int        `json:"uniqueDaysActive"`
	FirstEverTransaction   *TxPointer `json:"firstEverTransaction"`
	FirstTransactionOfYear *TxPointer `json:"firstTransactionOfYear"`
	IsOG                   bool       `json:"isOG"`
	WalletAgeDays          int        `json:"walletAgeDays"`

	LongestStreak int `json:"longestStreak"`
	CurrentStreak int `json:"currentStreak"`

	MostActiveMonth     string `json:"mostActiveMonth"`
	MostActiveDayOfWeek string `json:"mostActiveDay"`
	MostActiveTimeOfDay string `json:"mostActiveTime"`

	UniqueProtocols   int             `json:"uniqueProtocols"`
	FavoriteProtocol  string          `json:"favoriteProtocol"`
	ProtocolBreakdown []ProtocolShare `json:"protocolBreakdown"`

	NFTsMinted   int `json:"nftsMinted"`
	NFTsReceived int `json:"nftsReceived"`

	TotalVolumeUSD     float64 `json:"totalVolumeUSD"`
	SwapVolumeUSD      float64 `json:"swapVolumeUSD"`
	GasSpentETH        float64 `json:"gasSpentETH"`
	GasSpentUSD        float64 `json:"gasSpentUSD"`
	EstimatedL1CostUSD float64 `json:"estimatedL1CostUSD"`
	GasSavedUSD        float64 `json:"gasSavedUSD"`
	GasSavedEquivalent string  `json:"gasSavedEquivalent"`

	LuckyTransaction *TxPointer `json:"luckyTransaction"`
	BusiestDay       *DayCount  `json:"busiestDay"`

	Tribe       Tribe          `json:"tribe"`
	TribeScores map[string]int `json:"tribeScores"`
	Badges      []Badge        `json:"badges"`
}

// WrappedSnapshot is the persisted row summarising one wrapped computation.
type WrappedSnapshot struct {
	RunID             string    `ch:"run_id"`
	Address           string    `ch:"address"`
	Year              uint16    `ch:"year"`
	ComputedAt        time.Time `ch:"computed_at"`
	TotalTransactions uint64    `ch:"total_transactions"`
	UniqueDaysActive  uint32    `ch:"unique_days_active"`
	LongestStreak     uint32    `ch:"longest_streak"`
	TribeID           string    `ch:"tribe_id"`
	GasSavedUSD       float64   `ch:"gas_saved_usd"`
	TotalVolumeUSD    float64   `ch:"total_volume_usd"`
}
