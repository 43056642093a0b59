package models

import "fmt"

// Sport identifies one of the supported sports.
type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
)

// BasketballIDOffset shifts basketball contest ids into their own range so a
// bare numeric id can be resolved to a sport. The offset exceeds any plausible
// provider fixture id.
const BasketballIDOffset int64 = 5_000_000_000

// Valid reports whether the sport is one of the supported values.
func (s Sport) Valid() bool {
	return s == SportFootball || s == SportBasketball
}

// ContestID maps a provider's raw fixture id into the canonical id space.
func ContestID(sport Sport, rawID int64) int64 {
	if sport == SportBasketball {
		return rawID + BasketballIDOffset
	}
	return rawID
}

// SportForContestID resolves a canonical contest id back to its sport and the
// provider's raw id.
func SportForContestID(id int64) (Sport, int64, error) {
	if id <= 0 {
		return "", 0, fmt.Errorf("%w: %d", ErrInvalidContestID, id)
	}
	if id >= BasketballIDOffset {
		return SportBasketball, id - BasketballIDOffset, nil
	}
	return SportFootball, id, nil
}
