package wurdz

import "fmt"

type Config struct {
	// Table
	MaxPlayers int

	// Pool / hand sizing (0 => defaults derived from MaxPlayers)
	StartingTiles int
	TilesPerHand  int

	// Pre-game countdown in seconds (0 => default 3)
	CountdownSeconds int

	// RNG seed (0 => time-based)
	Seed int64
}

// DefaultStartingTiles 根据座位数推导牌池大小
func DefaultStartingTiles(maxPlayers int) int {
	n := maxPlayers * startingTilesRatio
	if n < MinStartingTiles {
		n = MinStartingTiles
	}
	return n
}

func (c Config) validate() error {
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("MaxPlayers must be > 0")
	}
	if c.StartingTiles < 0 {
		return fmt.Errorf("StartingTiles must be >= 0")
	}
	if c.TilesPerHand < 0 {
		return fmt.Errorf("TilesPerHand must be >= 0")
	}
	if c.CountdownSeconds < 0 {
		return fmt.Errorf("CountdownSeconds must be >= 0")
	}
	return nil
}

// withDefaults fills zero-valued fields after validate has passed.
func (c Config) withDefaults() Config {
	if c.StartingTiles == 0 {
		c.StartingTiles = DefaultStartingTiles(c.MaxPlayers)
	}
	if c.StartingTiles < MinStartingTiles {
		c.StartingTiles = MinStartingTiles
	}
	if c.TilesPerHand == 0 {
		c.TilesPerHand = tilesPerHand
	}
	if c.CountdownSeconds == 0 {
		c.CountdownSeconds = defaultCountdown
	}
	return c
}
