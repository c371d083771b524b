package paperfund

import (
	"encoding/json"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
)

func TestGenesisInitializer(t *testing.T) {
	const genesis = `
{
	"conf": {
		"paperfund": {
			"metadata": {"schema": 1},
			"owner": "6161616161616161616161616161616161616161",
			"collector_address": "6262626262626262626262626262626262626262",
			"platform_fee_rate": 250,
			"minimum_funding_goal": {"whole": 1000000, "ticker": "IOV"},
			"max_funding_period_days": 90,
			"total_funding": {"ticker": "IOV"}
		}
	}
}
	`
	var opts weave.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot unmarshal genesis: %s", err)
	}

	db := store.MemStore()
	migration.MustInitPkg(db, "paperfund")
	var ini Initializer
	if err := ini.FromGenesis(opts, weave.GenesisParams{}, db); err != nil {
		t.Fatalf("cannot load genesis: %s", err)
	}

	conf, err := loadConf(db)
	if err != nil {
		t.Fatalf("cannot load configuration: %s", err)
	}
	if conf.PlatformFeeRate != 250 {
		t.Errorf("unexpected platform fee rate: %d", conf.PlatformFeeRate)
	}
	if !conf.MinimumFundingGoal.Equals(coin.NewCoin(1000000, 0, "IOV")) {
		t.Errorf("unexpected minimum funding goal: %s", conf.MinimumFundingGoal)
	}
	if conf.MaxFundingPeriodDays != 90 {
		t.Errorf("unexpected max funding period: %d", conf.MaxFundingPeriodDays)
	}
	if conf.Paused {
		t.Error("a fresh platform must not be paused")
	}

	// The configuration is a singleton. A second initialization would
	// overwrite the platform state and must be refused.
	if err := ini.FromGenesis(opts, weave.GenesisParams{}, db); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want a duplicate error, got %+v", err)
	}
}
