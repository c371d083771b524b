package paperfund

import (
	"context"
	"testing"
	"time"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
)

func TestHandlers(t *testing.T) {
	var (
		adminCond    = weavetest.NewCondition()
		authorCond   = weavetest.NewCondition()
		funder1Cond  = weavetest.NewCondition()
		funder2Cond  = weavetest.NewCondition()
		strangerCond = weavetest.NewCondition()

		admin     = adminCond.Address()
		author    = authorCond.Address()
		funder1   = funder1Cond.Address()
		funder2   = funder2Cond.Address()
		collector = weavetest.NewCondition().Address()
	)

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	cashBucket := cash.NewBucket()
	ctrl := cash.NewController(cashBucket)
	RegisterRoutes(rt, auth, ctrl)

	paperAccount := func(id uint64) weave.Address {
		t.Helper()
		return PaperAccount(weavetest.SequenceID(id))
	}

	submitMsg := &SubmitPaperMsg{
		Metadata:          &weave.Metadata{Schema: 1},
		Title:             "Deterministic builds in adversarial environments",
		Abstract:          "We measure how reproducible a build can be made when parts of the toolchain are controlled by an adversary.",
		ContentHash:       "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o",
		Authors:           []string{"A. Researcher"},
		FundingGoal:       coin.NewCoin(1000, 0, "IOV"),
		FundingPeriodDays: 30,
	}

	// In below cases, weavetest.SequenceID(1) is used - this is the key of
	// the first paper created. The sequence is reset for each test case.

	cases := map[string]struct {
		// conf replaces the default platform configuration for this
		// case (250 basis points fee, minimum goal of 100 IOV).
		conf *Configuration
		// prepareAccounts is used to set the funds for each declared
		// account, before executing actions.
		prepareAccounts []account
		// actions is a set of messages that will be handled by the
		// router. Successfully handled messages are altering the
		// state.
		actions []action
		// wantAccounts is used to declare desired state of each
		// account after all actions are applied.
		wantAccounts []account
		// wantPapers is used to declare desired state of papers after
		// all actions are applied.
		wantPapers []wantPaper
	}{
		"published paper is funded past the goal and the author claims the escrow": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(1000, 0, "IOV")}},
				{address: funder2, coins: coin.Coins{coin.NewCoinp(525, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 101,
				},
				// 600 IOV gross, 15 IOV fee, 585 IOV escrowed.
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(600, 0, "IOV"),
					},
					blocksize: 102,
				},
				// 500 IOV gross, 12.5 IOV fee, 487.5 IOV escrowed.
				// Net total of 1072.5 IOV crosses the 1000 IOV goal.
				{
					conditions: []weave.Condition{funder2Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(500, 0, "IOV"),
					},
					blocksize: 103,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &ClaimFundsMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 104,
				},
				// The escrow was paid out, a second claim must fail.
				{
					conditions: []weave.Condition{authorCond},
					msg: &ClaimFundsMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize:      105,
					wantCheckErr:   ErrPaperStatus,
					wantDeliverErr: ErrPaperStatus,
				},
				// Completed papers can still be voted on. The dust
				// balance of the voter floors the weight to zero.
				{
					conditions: []weave.Condition{funder2Cond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   true,
					},
					blocksize: 106,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(400, 0, "IOV")}},
				{address: funder2, coins: coin.Coins{coin.NewCoinp(25, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(27, 500000000, "IOV")}},
				{address: author, coins: coin.Coins{coin.NewCoinp(1072, 500000000, "IOV")}},
				{address: paperAccount(1), coins: nil},
			},
			wantPapers: []wantPaper{
				{
					id:             1,
					status:         PaperStatusCompleted,
					fundingCurrent: coin.NewCoin(1072, 500000000, "IOV"),
				},
			},
		},
		"draft papers cannot be funded": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(100, 0, "IOV"),
					},
					blocksize:      101,
					wantCheckErr:   ErrPaperStatus,
					wantDeliverErr: ErrPaperStatus,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusDraft, fundingCurrent: coin.NewCoin(0, 0, "IOV")},
			},
		},
		"partially funded paper stays published and cannot be claimed": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(200, 0, "IOV"),
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &ClaimFundsMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize:      103,
					wantCheckErr:   ErrPaperStatus,
					wantDeliverErr: ErrPaperStatus,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(300, 0, "IOV")}},
				{address: paperAccount(1), coins: coin.Coins{coin.NewCoinp(195, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(5, 0, "IOV")}},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusPublished, fundingCurrent: coin.NewCoin(195, 0, "IOV")},
			},
		},
		"the same account cannot fund a paper twice": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 101,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(200, 0, "IOV"),
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(200, 0, "IOV"),
					},
					blocksize:      103,
					wantCheckErr:   errors.ErrDuplicate,
					wantDeliverErr: errors.ErrDuplicate,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(300, 0, "IOV")}},
				{address: paperAccount(1), coins: coin.Coins{coin.NewCoinp(195, 0, "IOV")}},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusPublished, fundingCurrent: coin.NewCoin(195, 0, "IOV")},
			},
		},
		"a fully funded paper rejects contributions but stays open for voting": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(1200, 0, "IOV")}},
				{address: funder2, coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 101,
				},
				// 1200 IOV gross, 30 IOV fee. The net of 1170 IOV
				// overshoots the 1000 IOV goal within a single
				// contribution and the paper becomes fully funded.
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(1200, 0, "IOV"),
					},
					blocksize: 102,
				},
				// Once the goal is reached no more contributions are
				// accepted.
				{
					conditions: []weave.Condition{funder2Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(100, 0, "IOV"),
					},
					blocksize:      103,
					wantCheckErr:   ErrPaperStatus,
					wantDeliverErr: ErrPaperStatus,
				},
				// Voting stays open after the goal is reached.
				{
					conditions: []weave.Condition{strangerCond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   true,
					},
					blocksize: 104,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: nil},
				{address: funder2, coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
				{address: paperAccount(1), coins: coin.Coins{coin.NewCoinp(1170, 0, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(30, 0, "IOV")}},
			},
			wantPapers: []wantPaper{
				{
					id:             1,
					status:         PaperStatusFullyFunded,
					upvotes:        1,
					fundingCurrent: coin.NewCoin(1170, 0, "IOV"),
				},
			},
		},
		"contributions after the funding deadline are rejected": {
			prepareAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
				{address: funder2, coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg: &SubmitPaperMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             submitMsg.Title,
						Abstract:          submitMsg.Abstract,
						ContentHash:       submitMsg.ContentHash,
						Authors:           submitMsg.Authors,
						FundingGoal:       submitMsg.FundingGoal,
						FundingPeriodDays: 1,
					},
					blocksize: 100,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 101,
				},
				// The block time is exactly the deadline second, the
				// contribution is still accepted.
				{
					conditions: []weave.Condition{funder2Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(100, 0, "IOV"),
					},
					blocksize: 86500,
				},
				// The block time is more than a day past the
				// submission, the funding window is closed.
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &FundPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Amount:   coin.NewCoin(100, 0, "IOV"),
					},
					blocksize:      90000,
					wantCheckErr:   errors.ErrExpired,
					wantDeliverErr: errors.ErrExpired,
				},
			},
			wantAccounts: []account{
				{address: funder1, coins: coin.Coins{coin.NewCoinp(500, 0, "IOV")}},
				{address: funder2, coins: nil},
				{address: paperAccount(1), coins: coin.Coins{coin.NewCoinp(97, 500000000, "IOV")}},
				{address: collector, coins: coin.Coins{coin.NewCoinp(2, 500000000, "IOV")}},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusPublished, fundingCurrent: coin.NewCoin(97, 500000000, "IOV")},
			},
		},
		"submission is gated by the platform minimum and ticker": {
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg: &SubmitPaperMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             submitMsg.Title,
						Abstract:          submitMsg.Abstract,
						ContentHash:       submitMsg.ContentHash,
						Authors:           submitMsg.Authors,
						FundingGoal:       coin.NewCoin(10, 0, "IOV"),
						FundingPeriodDays: 30,
					},
					blocksize:      100,
					wantCheckErr:   errors.ErrAmount,
					wantDeliverErr: errors.ErrAmount,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &SubmitPaperMsg{
						Metadata:          &weave.Metadata{Schema: 1},
						Title:             submitMsg.Title,
						Abstract:          submitMsg.Abstract,
						ContentHash:       submitMsg.ContentHash,
						Authors:           submitMsg.Authors,
						FundingGoal:       coin.NewCoin(1000, 0, "BTC"),
						FundingPeriodDays: 30,
					},
					blocksize:      101,
					wantCheckErr:   errors.ErrCurrency,
					wantDeliverErr: errors.ErrCurrency,
				},
			},
		},
		"only the author or the platform owner can publish": {
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				{
					conditions: []weave.Condition{strangerCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize:      101,
					wantCheckErr:   errors.ErrUnauthorized,
					wantDeliverErr: errors.ErrUnauthorized,
				},
				{
					conditions: []weave.Condition{adminCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 102,
				},
				// Published papers cannot be published again.
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize:      103,
					wantDeliverErr: ErrPaperStatus,
				},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusPublished, fundingCurrent: coin.NewCoin(0, 0, "IOV")},
			},
		},
		"votes are balance weighted and insert once": {
			prepareAccounts: []account{
				// Five weight units worth of balance.
				{address: funder1, coins: coin.Coins{coin.NewCoinp(5000000, 0, "IOV")}},
				// A positive dust balance gives a zero weight vote.
				{address: funder2, coins: coin.Coins{coin.NewCoinp(100, 0, "IOV")}},
			},
			actions: []action{
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  100,
				},
				// Draft papers cannot be voted on.
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   true,
					},
					blocksize:      101,
					wantCheckErr:   ErrPaperStatus,
					wantDeliverErr: ErrPaperStatus,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg: &PublishPaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   true,
					},
					blocksize: 103,
				},
				{
					conditions: []weave.Condition{funder2Cond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   false,
					},
					blocksize: 104,
				},
				// A voter without a wallet gets the default weight.
				{
					conditions: []weave.Condition{strangerCond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   true,
					},
					blocksize: 105,
				},
				{
					conditions: []weave.Condition{funder1Cond},
					msg: &VotePaperMsg{
						Metadata: &weave.Metadata{Schema: 1},
						PaperID:  weavetest.SequenceID(1),
						Upvote:   false,
					},
					blocksize:      106,
					wantCheckErr:   errors.ErrDuplicate,
					wantDeliverErr: errors.ErrDuplicate,
				},
			},
			wantPapers: []wantPaper{
				{
					id:             1,
					status:         PaperStatusPublished,
					upvotes:        6,
					downvotes:      0,
					fundingCurrent: coin.NewCoin(0, 0, "IOV"),
				},
			},
		},
		"paused platform rejects mutating operations until resumed": {
			conf: &Configuration{
				Metadata:           &weave.Metadata{Schema: 1},
				Owner:              admin,
				CollectorAddress:   collector,
				PlatformFeeRate:    250,
				MinimumFundingGoal: coin.NewCoin(100, 0, "IOV"),
				TotalFunding:       coin.NewCoin(0, 0, "IOV"),
				Paused:             true,
			},
			actions: []action{
				{
					conditions:     []weave.Condition{authorCond},
					msg:            submitMsg,
					blocksize:      100,
					wantCheckErr:   ErrPaused,
					wantDeliverErr: ErrPaused,
				},
				// Only the owner can flip the switch.
				{
					conditions: []weave.Condition{strangerCond},
					msg: &TogglePauseMsg{
						Metadata: &weave.Metadata{Schema: 1},
					},
					blocksize:      101,
					wantCheckErr:   errors.ErrUnauthorized,
					wantDeliverErr: errors.ErrUnauthorized,
				},
				{
					conditions: []weave.Condition{adminCond},
					msg: &TogglePauseMsg{
						Metadata: &weave.Metadata{Schema: 1},
					},
					blocksize: 102,
				},
				{
					conditions: []weave.Condition{authorCond},
					msg:        submitMsg,
					blocksize:  103,
				},
			},
			wantPapers: []wantPaper{
				{id: 1, status: PaperStatusDraft, fundingCurrent: coin.NewCoin(0, 0, "IOV")},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()

			migration.MustInitPkg(db, "paperfund", "cash")

			conf := tc.conf
			if conf == nil {
				conf = &Configuration{
					Metadata:           &weave.Metadata{Schema: 1},
					Owner:              admin,
					CollectorAddress:   collector,
					PlatformFeeRate:    250,
					MinimumFundingGoal: coin.NewCoin(100, 0, "IOV"),
					TotalFunding:       coin.NewCoin(0, 0, "IOV"),
				}
			}
			if err := gconf.Save(db, "paperfund", conf); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for _, a := range tc.prepareAccounts {
				for _, c := range a.coins {
					if err := ctrl.CoinMint(db, a.address, *c); err != nil {
						t.Fatalf("cannot issue %q to %s: %s", c, a.address, err)
					}
				}
			}

			for i, a := range tc.actions {
				cache := db.CacheWrap()
				if _, err := rt.Check(a.ctx(), cache, a.tx()); !a.wantCheckErr.Is(err) {
					t.Logf("want: %+v", a.wantCheckErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d check (%T)", i, a.msg)
				}
				cache.Discard()
				if a.wantCheckErr != nil {
					// Failed checks are causing the message to be ignored.
					continue
				}

				if _, err := rt.Deliver(a.ctx(), db, a.tx()); !a.wantDeliverErr.Is(err) {
					t.Logf("want: %+v", a.wantDeliverErr)
					t.Logf(" got: %+v", err)
					t.Fatalf("action %d delivery (%T)", i, a.msg)
				}
			}

			for i, a := range tc.wantAccounts {
				coins, err := ctrl.Balance(db, a.address)
				if err != nil && !errors.ErrNotFound.Is(err) {
					t.Fatalf("cannot get %+v balance: %s", a, err)
				}
				if !coins.Equals(a.coins) {
					t.Logf("want: %+v", a.coins)
					t.Logf("got: %+v", coins)
					t.Errorf("unexpected coins for account #%d (%s)", i, a.address)
				}
			}

			papers := NewPaperBucket()
			for _, w := range tc.wantPapers {
				var paper Paper
				if err := papers.One(db, weavetest.SequenceID(w.id), &paper); err != nil {
					t.Fatalf("cannot get paper %d: %s", w.id, err)
				}
				if paper.Status != w.status {
					t.Errorf("paper %d status: want %s, got %s", w.id, w.status, paper.Status)
				}
				if paper.Upvotes != w.upvotes || paper.Downvotes != w.downvotes {
					t.Errorf("paper %d tallies: want %d/%d, got %d/%d",
						w.id, w.upvotes, w.downvotes, paper.Upvotes, paper.Downvotes)
				}
				if !paper.FundingCurrent.Equals(w.fundingCurrent) {
					t.Errorf("paper %d funding current: want %s, got %s",
						w.id, w.fundingCurrent, paper.FundingCurrent)
				}
			}
		})
	}
}

// account represents a single account state - the coins/funds it holds.
type account struct {
	address weave.Address
	coins   coin.Coins
}

// wantPaper represents the desired state of a single paper.
type wantPaper struct {
	id        uint64
	status    PaperStatus
	upvotes   int64
	downvotes int64

	fundingCurrent coin.Coin
}

// action represents a single request call that is handled by a handler.
type action struct {
	conditions     []weave.Condition
	msg            weave.Msg
	blocksize      int64
	wantCheckErr   *errors.Error
	wantDeliverErr *errors.Error
}

func (a *action) tx() weave.Tx {
	return &weavetest.Tx{Msg: a.msg}
}

func (a *action) ctx() weave.Context {
	ctx := weave.WithHeight(context.Background(), a.blocksize)
	ctx = weave.WithChainID(ctx, "testchain-123")
	ctx = weave.WithBlockTime(ctx, time.Unix(1575000000+a.blocksize, 0))
	auth := &weavetest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, a.conditions...)
}

func TestPlatformFee(t *testing.T) {
	cases := map[string]struct {
		amount  coin.Coin
		rate    uint32
		want    coin.Coin
		wantErr *errors.Error
	}{
		"two and a half percent of a round amount": {
			amount: coin.NewCoin(1000, 0, "IOV"),
			rate:   250,
			want:   coin.NewCoin(25, 0, "IOV"),
		},
		"fee of a single coin is taken from the fractional part": {
			amount: coin.NewCoin(1, 0, "IOV"),
			rate:   250,
			want:   coin.NewCoin(0, 25000000, "IOV"),
		},
		"zero rate produces a zero fee": {
			amount: coin.NewCoin(1000, 0, "IOV"),
			rate:   0,
			want:   coin.NewCoin(0, 0, "IOV"),
		},
		"maximum rate takes a ten percent cut": {
			amount: coin.NewCoin(1000, 0, "IOV"),
			rate:   1000,
			want:   coin.NewCoin(100, 0, "IOV"),
		},
		"fee is rounded down": {
			amount: coin.NewCoin(0, 3, "IOV"),
			rate:   250,
			want:   coin.NewCoin(0, 0, "IOV"),
		},
		"huge amounts overflow": {
			amount:  coin.NewCoin(1<<62, 0, "IOV"),
			rate:    250,
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			fee, err := platformFee(tc.amount, tc.rate)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %q", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			if !fee.Equals(tc.want) {
				t.Fatalf("want %s fee, got %s", tc.want, fee)
			}
		})
	}
}

func TestVoteWeight(t *testing.T) {
	cases := map[string]struct {
		balance coin.Coins
		balErr  error
		want    int64
	}{
		"no wallet gives the default weight": {
			balErr: errors.ErrNotFound,
			want:   1,
		},
		"empty wallet gives the default weight": {
			balance: nil,
			want:    1,
		},
		"wallet without the platform ticker gives the default weight": {
			balance: coin.Coins{coin.NewCoinp(5000000, 0, "BTC")},
			want:    1,
		},
		"one point per balance unit": {
			balance: coin.Coins{coin.NewCoinp(5000000, 0, "IOV")},
			want:    5,
		},
		"weight is capped": {
			balance: coin.Coins{coin.NewCoinp(50000000, 0, "IOV")},
			want:    10,
		},
		"a dust balance floors to zero weight": {
			balance: coin.Coins{coin.NewCoinp(999999, 0, "IOV")},
			want:    0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := VotePaperHandler{
				ctrl: &testController{balance: tc.balance, err: tc.balErr},
			}
			got, err := h.voteWeight(nil, weave.Address("a-voter-address-1234"), "IOV")
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Fatalf("want weight %d, got %d", tc.want, got)
			}
		})
	}
}

type testController struct {
	balance coin.Coins
	err     error
	moves   []movecall
}

// movecall represents a single MoveCoins call made on the testController.
type movecall struct {
	src    weave.Address
	dst    weave.Address
	amount coin.Coin
}

func (c *testController) Balance(db weave.KVStore, addr weave.Address) (coin.Coins, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.balance, nil
}

func (c *testController) MoveCoins(db weave.KVStore, src, dst weave.Address, amount coin.Coin) error {
	if c.err != nil {
		return c.err
	}
	c.moves = append(c.moves, movecall{src: src, dst: dst, amount: amount})
	return nil
}
