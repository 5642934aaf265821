// Package steamid converts between 64-bit Steam ids and the 32-bit account
// ids used by the OpenDota API.
package steamid

import (
	"dota-tracker/internal/domain"
	"fmt"
	"math/big"
	"regexp"
)

// Base is the offset between a SteamID64 and its account id.
const Base = "76561197960265728"

var (
	base = mustBig(Base)

	// account ids are unsigned 32-bit
	maxAccount = new(big.Int).SetUint64(1<<32 - 1)

	digitsRe   = regexp.MustCompile(`^\d+$`)
	externalRe = regexp.MustCompile(`^76561\d{12}$`)
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("steamid: bad constant " + s)
	}
	return n
}

// ToInternal maps a SteamID64 to the account id.
func ToInternal(external string) (string, error) {
	n, err := parse(external)
	if err != nil {
		return "", err
	}
	return n.Sub(n, base).String(), nil
}

// ToExternal maps an account id to the SteamID64.
func ToExternal(internal string) (string, error) {
	n, err := parse(internal)
	if err != nil {
		return "", err
	}
	return n.Add(n, base).String(), nil
}

// ValidExternal reports whether id is a 17-digit individual-account SteamID64
// whose account id falls in 1..2^32-1.
func ValidExternal(id string) bool {
	if !externalRe.MatchString(id) {
		return false
	}
	n, _ := new(big.Int).SetString(id, 10)
	n.Sub(n, base)
	return n.Sign() > 0 && n.Cmp(maxAccount) <= 0
}

// ValidInternal reports whether id is a decimal account id in 1..2^32-1.
func ValidInternal(id string) bool {
	if !digitsRe.MatchString(id) {
		return false
	}
	n, _ := new(big.Int).SetString(id, 10)
	return n.Sign() > 0 && n.Cmp(maxAccount) <= 0
}

func parse(s string) (*big.Int, error) {
	if !digitsRe.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, s)
	}
	return n, nil
}
