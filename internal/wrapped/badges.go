package wrapped

import "github.com/estensen/wallet-wrapped/internal/models"

type badgeDef struct {
	id          string
	name        string
	description string
	earned      func(m models.WrappedMetrics) bool
}

// badgeDefs are evaluated independently of each other and of the tribe.
var badgeDefs = []badgeDef{
	{
		id: "og", name: "OG", description: "Active on Base before 2024",
		earned: func(m models.WrappedMetrics) bool { return m.IsOG },
	},
	{
		id: "streak-master", name: "Streak Master", description: "Active 7 days in a row",
		earned: func(m models.WrappedMetrics) bool { return m.LongestStreak >= 7 },
	},
	{
		id: "protocol-explorer", name: "Protocol Explorer", description: "Used 5 or more protocols",
		earned: func(m models.WrappedMetrics) bool { return m.UniqueProtocols >= 5 },
	},
	{
		id: "nft-minter", name: "NFT Minter", description: "Minted 5 or more NFTs",
		earned: func(m models.WrappedMetrics) bool { return m.NFTsMinted >= 5 },
	},
	{
		id: "gas-saver", name: "Gas Saver", description: "Saved $100 or more versus mainnet",
		earned: func(m models.WrappedMetrics) bool { return m.GasSavedUSD >= 100 },
	},
	{
		id: "whale", name: "Whale", description: "Moved $10,000 or more",
		earned: func(m models.WrappedMetrics) bool { return m.TotalVolumeUSD >= 10000 },
	},
	{
		id: "named", name: "Named", description: "Has a human-readable name",
		earned: func(m models.WrappedMetrics) bool { return m.DisplayName != "" },
	},
}

func evaluateBadges(m models.WrappedMetrics) []models.Badge {
	badges := make([]models.Badge, 0, len(badgeDefs))
	for _, def := range badgeDefs {
		badges = append(badges, models.Badge{
			ID:          def.id,
			Name:        def.name,
			Description: def.description,
			Earned:      def.earned(m),
		})
	}
	return badges
}
