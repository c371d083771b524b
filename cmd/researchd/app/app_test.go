package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave-research/x/paperfund"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "test-net-22"

func testApp(t *testing.T) app.BaseApp {
	t.Helper()
	// no minimum fee, in-memory data-store
	abciApp, err := GenerateApp(&server.Options{
		Home:   "",
		Logger: log.NewNopLogger(),
		Debug:  false,
	})
	require.NoError(t, err)
	return abciApp.(app.BaseApp)
}

func testInitChain(t *testing.T, myApp app.BaseApp, addr weave.Address) {
	t.Helper()
	// The rich genesis account is also the platform owner.
	appState, err := GenInitOptions([]string{"IOV", addr.String()})
	require.NoError(t, err)
	assert.Equal(t, "", myApp.GetChainID())
	myApp.InitChain(abci.RequestInitChain{
		AppStateBytes: appState,
		ChainId:       testChainID,
	})
}

// testCommit will commit at height h and return the new hash
func testCommit(t *testing.T, myApp app.BaseApp, h int64) []byte {
	t.Helper()
	header := abci.Header{
		Height:  h,
		ChainID: testChainID,
		Time:    time.Unix(1575000000+h, 0),
	}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	assert.Equal(t, testChainID, myApp.GetChainID())
	myApp.EndBlock(abci.RequestEndBlock{})
	cres := myApp.Commit()
	hash := cres.Data
	assert.NotEmpty(t, hash)
	return hash
}

func testQuery(t *testing.T, myApp app.BaseApp, path string, key []byte, obj weave.Persistent) {
	t.Helper()
	query := abci.RequestQuery{
		Path: path,
		Data: key,
	}
	qres := myApp.Query(query)
	require.Equal(t, uint32(0), qres.Code, "%#v", qres)
	require.NotEmpty(t, qres.Value)
	err := app.UnmarshalOneResult(qres.Value, obj)
	require.NoError(t, err)
}

// testDeliverTx signs the transaction and runs it through both CheckTx and
// DeliverTx within a single block at the given height.
func testDeliverTx(t *testing.T, myApp app.BaseApp, h int64, tx *Tx,
	sender *crypto.PrivateKey, seq int64) abci.ResponseDeliverTx {
	t.Helper()

	sig, err := sigs.SignTx(sender, tx, testChainID, seq)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	txBytes, err := tx.Marshal()
	require.NoError(t, err)
	require.NotEmpty(t, txBytes)

	header := abci.Header{
		Height:  h,
		ChainID: testChainID,
		Time:    time.Unix(1575000000+h, 0),
	}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := myApp.CheckTx(txBytes)
	require.Equal(t, uint32(0), chres.Code, chres.Log)
	dres := myApp.DeliverTx(txBytes)
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	return dres
}

func TestApp(t *testing.T) {
	myApp := testApp(t)

	pk := crypto.GenPrivKeyEd25519()
	addr := pk.PublicKey().Address()

	testInitChain(t, myApp, addr)
	hash1 := testCommit(t, myApp, 1)

	// the genesis account must be funded
	var acct cash.Set
	testQuery(t, myApp, "/wallets", addr, &acct)
	require.Equal(t, 1, len(acct.Coins))
	assert.Equal(t, int64(123456789), acct.Coins[0].Whole)
	assert.Equal(t, "IOV", acct.Coins[0].Ticker)

	// submit a paper
	dres := testDeliverTx(t, myApp, 2, &Tx{
		Sum: &Tx_SubmitPaperMsg{&paperfund.SubmitPaperMsg{
			Metadata:          &weave.Metadata{Schema: 1},
			Title:             "Deterministic builds in adversarial environments",
			Abstract:          "We measure how reproducible a build can be made when parts of the toolchain are controlled by an adversary.",
			ContentHash:       "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o",
			Authors:           []string{"A. Researcher"},
			FundingGoal:       coin.NewCoin(1000000, 0, "IOV"),
			FundingPeriodDays: 30,
		}},
	}, pk, 0)
	paperID := dres.Data
	assert.Equal(t, weavetest.SequenceID(1), paperID)
	hash2 := testCommit(t, myApp, 2)
	assert.NotEqual(t, hash1, hash2)

	var paper paperfund.Paper
	testQuery(t, myApp, "/papers", paperID, &paper)
	assert.Equal(t, paperfund.PaperStatusDraft, paper.Status)
	assert.Equal(t, addr, paper.Author)

	// publish it
	testDeliverTx(t, myApp, 3, &Tx{
		Sum: &Tx_PublishPaperMsg{&paperfund.PublishPaperMsg{
			Metadata: &weave.Metadata{Schema: 1},
			PaperID:  paperID,
		}},
	}, pk, 1)
	testCommit(t, myApp, 3)

	// fund it past the goal, 2,000,000 gross with a 2.5% platform cut
	testDeliverTx(t, myApp, 4, &Tx{
		Sum: &Tx_FundPaperMsg{&paperfund.FundPaperMsg{
			Metadata: &weave.Metadata{Schema: 1},
			PaperID:  paperID,
			Amount:   coin.NewCoin(2000000, 0, "IOV"),
		}},
	}, pk, 2)
	testCommit(t, myApp, 4)

	testQuery(t, myApp, "/papers", paperID, &paper)
	assert.Equal(t, paperfund.PaperStatusFullyFunded, paper.Status)
	assert.Equal(t, int64(1950000), paper.FundingCurrent.Whole)

	// the escrow account holds the net contribution
	var escrow cash.Set
	testQuery(t, myApp, "/wallets", paperfund.PaperAccount(paperID), &escrow)
	require.Equal(t, 1, len(escrow.Coins))
	assert.Equal(t, int64(1950000), escrow.Coins[0].Whole)

	// the author claims the escrow
	testDeliverTx(t, myApp, 5, &Tx{
		Sum: &Tx_ClaimFundsMsg{&paperfund.ClaimFundsMsg{
			Metadata: &weave.Metadata{Schema: 1},
			PaperID:  paperID,
		}},
	}, pk, 3)
	testCommit(t, myApp, 5)

	testQuery(t, myApp, "/papers", paperID, &paper)
	assert.Equal(t, paperfund.PaperStatusCompleted, paper.Status)

	// the author paid 2,000,000 and got 1,950,000 back, the collector
	// address from the genesis configuration holds the 50,000 cut
	var wallet cash.Set
	testQuery(t, myApp, "/wallets", addr, &wallet)
	require.Equal(t, 1, len(wallet.Coins))
	assert.Equal(t, int64(123456789-50000), wallet.Coins[0].Whole)
}
