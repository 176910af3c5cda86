// Package protocol holds the fixed contract tables used to label on-chain
// activity on Base: protocol routers, NFT mint contracts and stablecoins.
package protocol

import "strings"

type Category string

const (
	CategoryDEX      Category = "dex"
	CategoryLending  Category = "lending"
	CategoryBridge   Category = "bridge"
	CategoryNFT      Category = "nft"
	CategorySocial   Category = "social"
	CategoryIdentity Category = "identity"
)

// ZeroAddress is the sender of every mint.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

type Protocol struct {
	Name     string
	Category Category
}

// Keys are lower-case.
var known = map[string]Protocol{
	"0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad": {Name: "Uniswap", Category: CategoryDEX},
	"0x2626664c2603336e57b271c5c0b26f421741e481": {Name: "Uniswap", Category: CategoryDEX},
	"0x6ff5693b99212da76ad316178a184ab56d299b43": {Name: "Uniswap", Category: CategoryDEX},
	"0xcf77a3ba9a5ca399b7c97c74d54e5b1beb874e43": {Name: "Aerodrome", Category: CategoryDEX},
	"0x6cb442acf35158d5eda88fe602221b67b400be3e": {Name: "Aerodrome", Category: CategoryDEX},
	"0x111111125421ca6dc452d289314280a0f8842a65": {Name: "1inch", Category: CategoryDEX},
	"0xdef1c0ded9bec7f1a1670819833240f027b25eff": {Name: "0x", Category: CategoryDEX},
	"0x1b02da8cb0d097eb8d57a175b88c7d8b47997506": {Name: "SushiSwap", Category: CategoryDEX},
	"0xa238dd80c259a72e81d7e4664a9801593f98d1c5": {Name: "Aave", Category: CategoryLending},
	"0xfbb21d0380bee3312b33c4353c8936a0f13ef26c": {Name: "Moonwell", Category: CategoryLending},
	"0xb125e6687d4313864e53df431d5425969c15eb2f": {Name: "Compound", Category: CategoryLending},
	"0xbbbbbbbbbb9cc5e90e3b3af64bdaf62c37eeffcb": {Name: "Morpho", Category: CategoryLending},
	"0x4200000000000000000000000000000000000010": {Name: "Base Bridge", Category: CategoryBridge},
	"0x4200000000000000000000000000000000000016": {Name: "Base Bridge", Category: CategoryBridge},
	"0x09aea4b2242abc8bb4bb78d537a67a245a7bec64": {Name: "Across", Category: CategoryBridge},
	"0x45f1a95a4d3f3836523f5c83673c797f4d4d263b": {Name: "Stargate", Category: CategoryBridge},
	"0x0000000000000068f116a894984e2db1123eb395": {Name: "OpenSea", Category: CategoryNFT},
	"0x00000000000000adc04c56bf30ac9d3c0aaf14dc": {Name: "OpenSea", Category: CategoryNFT},
	"0x777777c338d93e2c7adf08d102d45ca7cc4ed021": {Name: "Zora", Category: CategoryNFT},
	"0x04e2516a2c207e84a1839755675dfd8ef6302f0a": {Name: "Zora", Category: CategoryNFT},
	"0xcf205808ed36593aa40a44f10c7f7c2f67d4a4d4": {Name: "friend.tech", Category: CategorySocial},
	"0x4ccb0bb02fcaba27e82a56646e81d8c5bc4119a5": {Name: "Basenames", Category: CategoryIdentity},
}

// marketplaceMinters are contracts whose mints count as legitimate even when
// the wallet did not send the minting transaction itself (e.g. sponsored mints).
var marketplaceMinters = map[string]struct{}{
	"0x777777c338d93e2c7adf08d102d45ca7cc4ed021": {},
	"0x04e2516a2c207e84a1839755675dfd8ef6302f0a": {},
	"0x0000000000000068f116a894984e2db1123eb395": {},
	"0x00000000000000adc04c56bf30ac9d3c0aaf14dc": {},
	"0x00005ea00ac477b1030ce78506496e8c2de24bf5": {},
}

// stablecoins are valued at one USD per unit.
var stablecoins = map[string]struct{}{
	"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": {},
	"0xd9aaec86b65d86f6a7b5b1b0c42ffa531710b6ca": {},
	"0x50c5725949a6f0c72e6c4a641f24049a917db0cb": {},
	"0xfde4c96c8593536e31f229ea8f37b2ada2699bb2": {},
}

// Lookup returns the protocol behind a contract address.
func Lookup(address string) (Protocol, bool) {
	p, ok := known[strings.ToLower(address)]
	return p, ok
}

// Is reports whether address belongs to a protocol of the given category.
func Is(address string, category Category) bool {
	p, ok := Lookup(address)
	return ok && p.Category == category
}

func IsMarketplaceMinter(contract string) bool {
	_, ok := marketplaceMinters[strings.ToLower(contract)]
	return ok
}

func IsStablecoin(contract string) bool {
	_, ok := stablecoins[strings.ToLower(contract)]
	return ok
}

func IsZeroAddress(address string) bool {
	return strings.EqualFold(address, ZeroAddress)
}
