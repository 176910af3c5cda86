package score

import "github.com/estensen/wallet-wrapped/internal/models"

// Thresholds are product constants; change them only with the product owner.
const (
	minDistinctTokens      = 3
	minRegularProtocols    = 4
	minRegularActiveDays   = 7
	minPowerVolumeUSD      = 1000
	minPowerTransactions   = 50
	minMintedNFTs          = 5
	minVeteranAgeDays      = 180
	minVeteranTransactions = 200
	minVeteranVolumeUSD    = 10000
	minVeteranProtocols    = 6
)

type Requirement struct {
	ID          string
	Description string
	Check       func(models.WalletStatistics) bool
}

type Level struct {
	Number       int
	Name         string
	Requirements []Requirement
}

// Levels is evaluated in order. Every requirement weighs the same in the
// score regardless of its level.
var Levels = []Level{
	{
		Number: 1,
		Name:   "Getting Started",
		Requirements: []Requirement{
			{
				ID:          "funded",
				Description: "Hold a balance or move some volume",
				Check: func(s models.WalletStatistics) bool {
					return s.BalanceETH > 0 || s.TotalVolumeUSD > 0
				},
			},
			{
				ID:          "first-transaction",
				Description: "Complete your first transaction",
				Check:       func(s models.WalletStatistics) bool { return s.TotalTransactions >= 1 },
			},
			{
				ID:          "named",
				Description: "Claim a human-readable name",
				Check:       func(s models.WalletStatistics) bool { return s.DisplayName != "" },
			},
		},
	},
	{
		Number: 2,
		Name:   "Explorer",
		Requirements: []Requirement{
			{
				ID:          "dex-swap",
				Description: "Swap on a DEX",
				Check:       func(s models.WalletStatistics) bool { return s.HasDEXActivity },
			},
			{
				ID:          "token-collector",
				Description: "Hold 3 or more distinct tokens",
				Check:       func(s models.WalletStatistics) bool { return s.DistinctTokens >= minDistinctTokens },
			},
			{
				ID:          "nft-activity",
				Description: "Collect or mint an NFT",
				Check:       func(s models.WalletStatistics) bool { return s.HasNFTActivity },
			},
		},
	},
	{
		Number: 3,
		Name:   "Regular",
		Requirements: []Requirement{
			{
				ID:          "diverse-and-consistent",
				Description: "Use 4+ protocols across 7+ active days",
				Check: func(s models.WalletStatistics) bool {
					return s.UniqueProtocols >= minRegularProtocols && s.UniqueDays >= minRegularActiveDays
				},
			},
			{
				ID:          "bridged",
				Description: "Bridge assets onchain",
				Check:       func(s models.WalletStatistics) bool { return s.BridgeTransactions >= 1 },
			},
		},
	},
	{
		Number: 4,
		Name:   "Power User",
		Requirements: []Requirement{
			{
				ID:          "defi-power-user",
				Description: "Use a lending protocol with $1,000+ volume and 50+ transactions",
				Check: func(s models.WalletStatistics) bool {
					return s.HasLendingActivity && s.TotalVolumeUSD >= minPowerVolumeUSD && s.TotalTransactions >= minPowerTransactions
				},
			},
			{
				ID:          "minter",
				Description: "Mint 5 or more NFTs",
				Check:       func(s models.WalletStatistics) bool { return s.NFTMints >= minMintedNFTs },
			},
		},
	},
	{
		Number: 5,
		Name:   "Veteran",
		Requirements: []Requirement{
			{
				ID:          "veteran",
				Description: "6+ months onchain with 200+ transactions, $10,000+ volume and 6+ protocols",
				Check: func(s models.WalletStatistics) bool {
					return s.WalletAgeDays >= minVeteranAgeDays &&
						s.TotalTransactions >= minVeteranTransactions &&
						s.TotalVolumeUSD >= minVeteranVolumeUSD &&
						s.UniqueProtocols >= minVeteranProtocols
				},
			},
		},
	},
}
