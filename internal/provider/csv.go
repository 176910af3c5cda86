package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/parser"
)

// CSVExport serves transactions from a block-explorer CSV export of a single
// wallet. Rows that neither come from nor go to the requested address are
// dropped. Transfers are not part of the export.
type CSVExport struct {
	Path   string
	Parser parser.Parser
}

func NewCSVExport(path string) *CSVExport {
	return &CSVExport{
		Path:   path,
		Parser: parser.NewCSVParser(),
	}
}

func (c *CSVExport) Name() string {
	return "csv"
}

func (c *CSVExport) Transactions(_ context.Context, address string) ([]models.CanonicalTransaction, error) {
	transactions, err := c.Parser.ParseCSV(c.Path)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV export %s: %w", c.Path, err)
	}

	own := make([]models.CanonicalTransaction, 0, len(transactions))
	for _, txn := range transactions {
		if strings.EqualFold(txn.From, address) || strings.EqualFold(txn.To, address) {
			own = append(own, txn)
		}
	}
	return own, nil
}

func (c *CSVExport) TokenTransfers(context.Context, string) ([]models.TokenTransfer, error) {
	return nil, fmt.Errorf("%w: csv token transfers", ErrUnsupported)
}

func (c *CSVExport) NFTTransfers(context.Context, string) ([]models.NFTTransfer, error) {
	return nil, fmt.Errorf("%w: csv NFT transfers", ErrUnsupported)
}
