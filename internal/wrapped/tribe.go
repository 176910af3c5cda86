package wrapped

import "github.com/estensen/wallet-wrapped/internal/models"

type tribeSignals struct {
	swapVolumeUSD  float64
	swapCount      int
	nftsMinted     int
	nftsReceived   int
	isOG           bool
	walletAgeDays  int
	protocols      int
	longestStreak  int
	social         Social
	socialTxCount  int
	lendingTxCount int
}

const (
	TribeDegen     = "degen"
	TribeCollector = "collector"
	TribeOG        = "og"
	TribeExplorer  = "explorer"
	TribeGrinder   = "grinder"
	TribeSocialite = "socialite"
	TribeFarmer    = "farmer"
	TribeNewcomer  = "newcomer"
)

// tribeOrder is the scoring and tie-break order: on equal scores the earlier
// tribe wins.
var tribeOrder = []string{
	TribeDegen,
	TribeCollector,
	TribeOG,
	TribeExplorer,
	TribeGrinder,
	TribeSocialite,
	TribeFarmer,
}

var tribes = map[string]models.Tribe{
	TribeDegen:     {ID: TribeDegen, Name: "The Degen", Emoji: "🎰", Description: "Swaps first, asks questions later.", Color: "#FF4D4D"},
	TribeCollector: {ID: TribeCollector, Name: "The Collector", Emoji: "🖼️", Description: "Minting and collecting onchain art.", Color: "#A259FF"},
	TribeOG:        {ID: TribeOG, Name: "The OG", Emoji: "🏛️", Description: "Here before it was cool.", Color: "#FFB800"},
	TribeExplorer:  {ID: TribeExplorer, Name: "The Explorer", Emoji: "🧭", Description: "Tried every app on the chain.", Color: "#00C2FF"},
	TribeGrinder:   {ID: TribeGrinder, Name: "The Grinder", Emoji: "⚙️", Description: "Shows up every single day.", Color: "#7A7A7A"},
	TribeSocialite: {ID: TribeSocialite, Name: "The Socialite", Emoji: "💬", Description: "Onchain and extremely online.", Color: "#8A63D2"},
	TribeFarmer:    {ID: TribeFarmer, Name: "The Yield Farmer", Emoji: "🌾", Description: "Putting every token to work.", Color: "#2ECC71"},
	TribeNewcomer:  {ID: TribeNewcomer, Name: "Based Newcomer", Emoji: "🌱", Description: "Just getting started on Base.", Color: "#0052FF"},
}

// TribeInfo returns the display metadata of a tribe id.
func TribeInfo(id string) (models.Tribe, bool) {
	t, ok := tribes[id]
	return t, ok
}

type floatBand struct {
	min    float64
	points int
}

type intBand struct {
	min    int
	points int
}

func floatPoints(value float64, bands []floatBand) int {
	for _, b := range bands {
		if value >= b.min {
			return b.points
		}
	}
	return 0
}

func intPoints(value int, bands []intBand) int {
	for _, b := range bands {
		if value >= b.min {
			return b.points
		}
	}
	return 0
}

var (
	swapVolumeBands = []floatBand{{100000, 100}, {10000, 80}, {1000, 60}, {100, 40}}
	swapCountBonus  = []intBand{{100, 20}, {25, 10}}
	nftBands        = []intBand{{100, 100}, {50, 80}, {10, 60}, {1, 40}}
	mintBonus       = []intBand{{20, 20}}
	ageBonus        = []intBand{{1095, 40}, {730, 30}, {365, 20}}
	protocolBands   = []intBand{{15, 100}, {10, 80}, {6, 60}, {3, 40}}
	streakBands     = []intBand{{60, 100}, {30, 80}, {14, 60}, {7, 40}}
	followerBands   = []intBand{{10000, 100}, {1000, 80}, {100, 60}}
	socialTxBonus   = []intBand{{10, 20}}
	lendingBands    = []intBand{{50, 100}, {20, 80}, {5, 60}, {1, 40}}
)

const (
	ogPoints       = 60
	farcasterPoint = 40
)

func scoreTribes(s tribeSignals) map[string]int {
	scores := make(map[string]int, len(tribeOrder))

	scores[TribeDegen] = floatPoints(s.swapVolumeUSD, swapVolumeBands) + intPoints(s.swapCount, swapCountBonus)
	scores[TribeCollector] = intPoints(s.nftsMinted+s.nftsReceived, nftBands) + intPoints(s.nftsMinted, mintBonus)

	og := intPoints(s.walletAgeDays, ageBonus)
	if s.isOG {
		og += ogPoints
	}
	scores[TribeOG] = og

	scores[TribeExplorer] = intPoints(s.protocols, protocolBands)
	scores[TribeGrinder] = intPoints(s.longestStreak, streakBands)

	social := intPoints(s.social.Followers, followerBands)
	if social == 0 && s.social.HasFarcaster {
		social = farcasterPoint
	}
	scores[TribeSocialite] = social + intPoints(s.socialTxCount, socialTxBonus)

	scores[TribeFarmer] = intPoints(s.lendingTxCount, lendingBands)
	return scores
}

// pickTribe returns the highest scoring tribe, or the newcomer tribe when
// nothing scored.
func pickTribe(scores map[string]int) models.Tribe {
	best, bestScore := TribeNewcomer, 0
	for _, id := range tribeOrder {
		if scores[id] > bestScore {
			best, bestScore = id, scores[id]
		}
	}
	return tribes[best]
}
