package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coinlab/coinlab/foundation/ledger/genesis"
)

func TestLoad(t *testing.T) {
	doc := `{
	"date": "2026-01-01T00:00:00Z",
	"difficulty": 2,
	"mining_reward": 50,
	"target_block_time": 15,
	"balances": {
		"0xabc": 1000
	}
}`

	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	gen, err := genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %s", err)
	}

	if gen.Difficulty != 2 || gen.MiningReward != 50 || gen.TargetBlockTime != 15 {
		t.Fatalf("Should get back the configured settings: %+v", gen)
	}

	if gen.Balances["0xabc"] != 1000 {
		t.Fatalf("Should get back the initial allocations: %+v", gen.Balances)
	}

	if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Should fail when the file does not exist.")
	}
}

func TestDefault(t *testing.T) {
	gen := genesis.Default()

	if gen.Difficulty == 0 || gen.MiningReward == 0 || gen.TargetBlockTime == 0 {
		t.Fatalf("Should provide non-zero defaults: %+v", gen)
	}
}
