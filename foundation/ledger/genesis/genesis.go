// Package genesis maintains access to the chain settings.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the settings the chain is started with.
type Genesis struct {
	Date            time.Time         `json:"date"`
	Difficulty      uint              `json:"difficulty"`        // How many leading zero hex digits a block hash needs.
	MiningReward    uint64            `json:"mining_reward"`     // Reward credited to the miner of a block.
	TargetBlockTime uint              `json:"target_block_time"` // Desired seconds between blocks, drives the retarget rule.
	Balances        map[string]uint64 `json:"balances"`          // Initial allocations credited before any block is mined.
}

// Default returns the settings used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:      4,
		MiningReward:    10,
		TargetBlockTime: 30,
	}
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
