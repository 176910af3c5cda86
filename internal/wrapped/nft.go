package wrapped

import (
	"strings"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/protocol"
)

type nftCounts struct {
	minted   int
	received int
}

// classifyNFTs counts in-year NFT mints and receipts the wallet actually took
// part in. A mint needs the wallet's own transaction or a known marketplace
// contract; a receipt always needs the wallet's own transaction. Everything
// else is treated as an unsolicited airdrop and ignored.
func classifyNFTs(address string, txs []models.CanonicalTransaction, transfers []models.NFTTransfer, w window) nftCounts {
	var counts nftCounts
	if address == "" {
		return counts
	}
	own := hashSet(txs)

	for _, transfer := range transfers {
		if !w.contains(transfer.TimestampSeconds) || !strings.EqualFold(transfer.To, address) {
			continue
		}
		_, sentByWallet := own[strings.ToLower(transfer.Hash)]

		if protocol.IsZeroAddress(transfer.From) {
			if sentByWallet || protocol.IsMarketplaceMinter(transfer.ContractAddress) {
				counts.minted++
			}
			continue
		}
		if sentByWallet {
			counts.received++
		}
	}
	return counts
}
