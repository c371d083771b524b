package paperfund

import (
	"time"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	submitPaperCost  int64 = 100
	publishPaperCost int64 = 50
	fundPaperCost    int64 = 100
	votePaperCost    int64 = 50
	claimFundsCost   int64 = 100
	togglePauseCost  int64 = 0
)

const (
	// feeRateDenominator translates the configured fee rate from basis
	// points into a fraction of the contributed amount.
	feeRateDenominator = 10000

	// voteWeightUnit is the wallet balance (in whole coins) that grants a
	// single point of vote weight.
	voteWeightUnit = 1000000

	// maxVoteWeight caps the weight of a single vote regardless of the
	// voter wallet balance.
	maxVoteWeight = 10

	// defaultVoteWeight is used for voters without a wallet.
	defaultVoteWeight = 1
)

const (
	tagAction = "action"
	tagPaper  = "paper"
)

// CashController allows to manage coins stored by the accounts without the
// need to directly access the cash bucket.
type CashController interface {
	Balance(weave.KVStore, weave.Address) (coin.Coins, error)
	MoveCoins(weave.KVStore, weave.Address, weave.Address, coin.Coin) error
}

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl CashController) {
	r = migration.SchemaMigratingRegistry("paperfund", r)

	papers := NewPaperBucket()
	fundings := NewFundingRecordBucket()
	votes := NewVoteRecordBucket()

	r.Handle(&SubmitPaperMsg{}, SubmitPaperHandler{auth: auth, papers: papers})
	r.Handle(&PublishPaperMsg{}, PublishPaperHandler{auth: auth, papers: papers})
	r.Handle(&FundPaperMsg{}, FundPaperHandler{auth: auth, papers: papers, fundings: fundings, ctrl: ctrl})
	r.Handle(&VotePaperMsg{}, VotePaperHandler{auth: auth, papers: papers, votes: votes, ctrl: ctrl})
	r.Handle(&ClaimFundsMsg{}, ClaimFundsHandler{auth: auth, papers: papers, ctrl: ctrl})
	r.Handle(&TogglePauseMsg{}, TogglePauseHandler{auth: auth})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("paperfund", &Configuration{}, auth, migration.CurrentAdmin))
}

// RegisterQuery will register buckets as "/papers", "/fundrecs" and
// "/voterecs".
func RegisterQuery(qr weave.QueryRouter) {
	NewPaperBucket().Register("papers", qr)
	NewFundingRecordBucket().Register("fundrecs", qr)
	NewVoteRecordBucket().Register("voterecs", qr)
}

// SubmitPaperHandler creates a new paper in draft status.
type SubmitPaperHandler struct {
	auth   x.Authenticator
	papers orm.ModelBucket
}

var _ weave.Handler = SubmitPaperHandler{}

func (h SubmitPaperHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: submitPaperCost}, nil
}

func (h SubmitPaperHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, author, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	key, err := paperSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "acquire paper id")
	}

	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	now := weave.AsUnixTime(blockTime)
	deadline := now.Add(time.Duration(msg.FundingPeriodDays) * 24 * time.Hour)

	paper := &Paper{
		Metadata:        &weave.Metadata{Schema: 1},
		Author:          author,
		Title:           msg.Title,
		Abstract:        msg.Abstract,
		ContentHash:     msg.ContentHash,
		Authors:         msg.Authors,
		Status:          PaperStatusDraft,
		FundingGoal:     msg.FundingGoal,
		FundingCurrent:  coin.Coin{Ticker: msg.FundingGoal.Ticker},
		FundingDeadline: deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := h.papers.Put(db, key, paper); err != nil {
		return nil, errors.Wrap(err, "store paper")
	}

	return &weave.DeliverResult{
		Data: key,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("submit_paper")},
			{Key: []byte(tagPaper), Value: key},
		},
	}, nil
}

func (h SubmitPaperHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SubmitPaperMsg, weave.Address, error) {
	var msg SubmitPaperMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := mustNotBePaused(db)
	if err != nil {
		return nil, nil, err
	}
	if msg.FundingGoal.Ticker != conf.MinimumFundingGoal.Ticker {
		return nil, nil, errors.Wrapf(errors.ErrCurrency,
			"funding goal must use the %q ticker", conf.MinimumFundingGoal.Ticker)
	}
	if !msg.FundingGoal.IsGTE(conf.MinimumFundingGoal) {
		return nil, nil, errors.Wrapf(errors.ErrAmount,
			"funding goal below the platform minimum of %s", conf.MinimumFundingGoal)
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	return &msg, signer.Address(), nil
}

// PublishPaperHandler moves a paper from draft to published status, opening
// it for funding and voting.
type PublishPaperHandler struct {
	auth   x.Authenticator
	papers orm.ModelBucket
}

var _ weave.Handler = PublishPaperHandler{}

func (h PublishPaperHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: publishPaperCost}, nil
}

func (h PublishPaperHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, paper, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := paper.SetStatus(PaperStatusPublished); err != nil {
		return nil, err
	}
	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	paper.UpdatedAt = weave.AsUnixTime(blockTime)
	if _, err := h.papers.Put(db, msg.PaperID, paper); err != nil {
		return nil, errors.Wrap(err, "store paper")
	}
	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("publish_paper")},
			{Key: []byte(tagPaper), Value: msg.PaperID},
		},
	}, nil
}

func (h PublishPaperHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PublishPaperMsg, *Paper, error) {
	var msg PublishPaperMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := mustNotBePaused(db)
	if err != nil {
		return nil, nil, err
	}
	var paper Paper
	if err := h.papers.One(db, msg.PaperID, &paper); err != nil {
		return nil, nil, errors.Wrap(err, "load paper")
	}
	// The paper author and the platform owner both can publish.
	if !h.auth.HasAddress(ctx, paper.Author) && !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "author or owner signature required")
	}
	return &msg, &paper, nil
}

// FundPaperHandler processes a contribution towards a published paper. The
// platform fee is deducted and moved to the collector, the rest is held on
// the paper escrow account.
type FundPaperHandler struct {
	auth     x.Authenticator
	papers   orm.ModelBucket
	fundings orm.ModelBucket
	ctrl     CashController
}

var _ weave.Handler = FundPaperHandler{}

func (h FundPaperHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: fundPaperCost}, nil
}

func (h FundPaperHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	f, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	fee, err := platformFee(f.msg.Amount, f.conf.PlatformFeeRate)
	if err != nil {
		return nil, errors.Wrap(err, "compute fee")
	}
	net, err := f.msg.Amount.Subtract(fee)
	if err != nil {
		return nil, errors.Wrap(err, "compute net amount")
	}

	escrow := PaperAccount(f.msg.PaperID)
	if err := h.ctrl.MoveCoins(db, f.funder, escrow, net); err != nil {
		return nil, errors.Wrap(err, "move contribution")
	}
	if !fee.IsZero() {
		if err := h.ctrl.MoveCoins(db, f.funder, f.conf.CollectorAddress, fee); err != nil {
			return nil, errors.Wrap(err, "move fee")
		}
	}

	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	now := weave.AsUnixTime(blockTime)

	rec := &FundingRecord{
		Metadata:  &weave.Metadata{Schema: 1},
		PaperID:   f.msg.PaperID,
		Funder:    f.funder,
		Amount:    net,
		Fee:       fee,
		CreatedAt: now,
	}
	if _, err := h.fundings.Put(db, fundingRecordKey(f.msg.PaperID, f.funder), rec); err != nil {
		return nil, errors.Wrap(err, "store funding record")
	}

	total, err := f.paper.FundingCurrent.Add(net)
	if err != nil {
		return nil, errors.Wrap(err, "update funding current")
	}
	f.paper.FundingCurrent = total
	if total.IsGTE(f.paper.FundingGoal) {
		if err := f.paper.SetStatus(PaperStatusFullyFunded); err != nil {
			return nil, err
		}
	}
	f.paper.UpdatedAt = now
	if _, err := h.papers.Put(db, f.msg.PaperID, f.paper); err != nil {
		return nil, errors.Wrap(err, "store paper")
	}

	platformTotal, err := f.conf.TotalFunding.Add(net)
	if err != nil {
		return nil, errors.Wrap(err, "update total funding")
	}
	f.conf.TotalFunding = platformTotal
	if err := gconf.Save(db, "paperfund", f.conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("fund_paper")},
			{Key: []byte(tagPaper), Value: f.msg.PaperID},
		},
	}, nil
}

type fundRequest struct {
	msg    *FundPaperMsg
	conf   *Configuration
	paper  *Paper
	funder weave.Address
}

func (h FundPaperHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*fundRequest, error) {
	var msg FundPaperMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := mustNotBePaused(db)
	if err != nil {
		return nil, err
	}
	var paper Paper
	if err := h.papers.One(db, msg.PaperID, &paper); err != nil {
		return nil, errors.Wrap(err, "load paper")
	}
	if !paper.AcceptsFunding() {
		return nil, errors.Wrap(ErrPaperStatus, "paper is not open for funding")
	}
	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	// A contribution at the deadline second is still accepted.
	if paper.FundingDeadline < weave.AsUnixTime(blockTime) {
		return nil, errors.Wrap(errors.ErrExpired, "funding deadline has passed")
	}
	if msg.Amount.Ticker != paper.FundingGoal.Ticker {
		return nil, errors.Wrapf(errors.ErrCurrency,
			"contribution must use the %q ticker", paper.FundingGoal.Ticker)
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	funder := signer.Address()

	switch err := h.fundings.Has(db, fundingRecordKey(msg.PaperID, funder)); {
	case err == nil:
		return nil, errors.Wrap(errors.ErrDuplicate, "paper already funded by this account")
	case errors.ErrNotFound.Is(err):
		// All good, the first contribution from this account.
	default:
		return nil, errors.Wrap(err, "funding record")
	}

	return &fundRequest{msg: &msg, conf: conf, paper: &paper, funder: funder}, nil
}

// platformFee returns the platform cut of a gross contribution. The rate is
// expressed in basis points and the result is rounded down.
func platformFee(amount coin.Coin, rate uint32) (coin.Coin, error) {
	total, err := amount.Multiply(int64(rate))
	if err != nil {
		return coin.Coin{}, err
	}
	fee, _, err := total.Divide(feeRateDenominator)
	return fee, err
}

// VotePaperHandler records a single, balance weighted vote on a published
// paper.
type VotePaperHandler struct {
	auth   x.Authenticator
	papers orm.ModelBucket
	votes  orm.ModelBucket
	ctrl   CashController
}

var _ weave.Handler = VotePaperHandler{}

func (h VotePaperHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: votePaperCost}, nil
}

func (h VotePaperHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	weight, err := h.voteWeight(db, v.voter, v.conf.MinimumFundingGoal.Ticker)
	if err != nil {
		return nil, errors.Wrap(err, "vote weight")
	}

	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	now := weave.AsUnixTime(blockTime)

	rec := &VoteRecord{
		Metadata:  &weave.Metadata{Schema: 1},
		PaperID:   v.msg.PaperID,
		Voter:     v.voter,
		Upvote:    v.msg.Upvote,
		Weight:    weight,
		CreatedAt: now,
	}
	if _, err := h.votes.Put(db, voteRecordKey(v.msg.PaperID, v.voter), rec); err != nil {
		return nil, errors.Wrap(err, "store vote record")
	}

	if v.msg.Upvote {
		if v.paper.Upvotes+weight < v.paper.Upvotes {
			return nil, errors.Wrap(errors.ErrOverflow, "upvotes")
		}
		v.paper.Upvotes += weight
	} else {
		if v.paper.Downvotes+weight < v.paper.Downvotes {
			return nil, errors.Wrap(errors.ErrOverflow, "downvotes")
		}
		v.paper.Downvotes += weight
	}
	v.paper.UpdatedAt = now
	if _, err := h.papers.Put(db, v.msg.PaperID, v.paper); err != nil {
		return nil, errors.Wrap(err, "store paper")
	}

	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("vote_paper")},
			{Key: []byte(tagPaper), Value: v.msg.PaperID},
		},
	}, nil
}

// voteWeight derives the vote weight from the voter wallet balance in the
// platform ticker. An account without a wallet gets the default weight of
// one. An account with a wallet is granted one point per each voteWeightUnit
// of balance, capped at maxVoteWeight. A dust balance below a single unit
// gives a zero weight vote.
func (h VotePaperHandler) voteWeight(db weave.KVStore, voter weave.Address, ticker string) (int64, error) {
	balance, err := h.ctrl.Balance(db, voter)
	switch {
	case err == nil:
		// Wallet exists, weight depends on the balance.
	case errors.ErrNotFound.Is(err):
		return defaultVoteWeight, nil
	default:
		return 0, errors.Wrap(err, "balance")
	}
	for _, c := range balance {
		if c.Ticker != ticker {
			continue
		}
		if !c.IsPositive() {
			break
		}
		weight := c.Whole / voteWeightUnit
		if weight > maxVoteWeight {
			weight = maxVoteWeight
		}
		return weight, nil
	}
	return defaultVoteWeight, nil
}

type voteRequest struct {
	msg   *VotePaperMsg
	conf  *Configuration
	paper *Paper
	voter weave.Address
}

func (h VotePaperHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*voteRequest, error) {
	var msg VotePaperMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := mustNotBePaused(db)
	if err != nil {
		return nil, err
	}
	var paper Paper
	if err := h.papers.One(db, msg.PaperID, &paper); err != nil {
		return nil, errors.Wrap(err, "load paper")
	}
	if !paper.IsPublished() {
		return nil, errors.Wrap(ErrPaperStatus, "paper is not published")
	}
	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	voter := signer.Address()

	switch err := h.votes.Has(db, voteRecordKey(msg.PaperID, voter)); {
	case err == nil:
		return nil, errors.Wrap(errors.ErrDuplicate, "paper already voted on by this account")
	case errors.ErrNotFound.Is(err):
		// All good, the first vote from this account.
	default:
		return nil, errors.Wrap(err, "vote record")
	}

	return &voteRequest{msg: &msg, conf: conf, paper: &paper, voter: voter}, nil
}

// ClaimFundsHandler pays the escrow account of a fully funded paper out to
// its author. The escrow account is not controlled by any signature, only
// this handler can authorize the transfer by deriving the account address
// from the paper key.
type ClaimFundsHandler struct {
	auth   x.Authenticator
	papers orm.ModelBucket
	ctrl   CashController
}

var _ weave.Handler = ClaimFundsHandler{}

func (h ClaimFundsHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: claimFundsCost}, nil
}

func (h ClaimFundsHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, paper, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	escrow := PaperAccount(msg.PaperID)
	balance, err := h.ctrl.Balance(db, escrow)
	switch {
	case err == nil:
		// Wallet exists, pay it out below.
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrNoFunds, "escrow account is empty")
	default:
		return nil, errors.Wrap(err, "escrow balance")
	}
	if len(balance) == 0 {
		return nil, errors.Wrap(ErrNoFunds, "escrow account is empty")
	}
	for _, c := range balance {
		if err := h.ctrl.MoveCoins(db, escrow, paper.Author, *c); err != nil {
			return nil, errors.Wrap(err, "move funds")
		}
	}

	if err := paper.SetStatus(PaperStatusCompleted); err != nil {
		return nil, err
	}
	blockTime, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	paper.UpdatedAt = weave.AsUnixTime(blockTime)
	if _, err := h.papers.Put(db, msg.PaperID, paper); err != nil {
		return nil, errors.Wrap(err, "store paper")
	}

	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("claim_funds")},
			{Key: []byte(tagPaper), Value: msg.PaperID},
		},
	}, nil
}

func (h ClaimFundsHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ClaimFundsMsg, *Paper, error) {
	var msg ClaimFundsMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := mustNotBePaused(db); err != nil {
		return nil, nil, err
	}
	var paper Paper
	if err := h.papers.One(db, msg.PaperID, &paper); err != nil {
		return nil, nil, errors.Wrap(err, "load paper")
	}
	if !h.auth.HasAddress(ctx, paper.Author) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the author can claim")
	}
	if paper.Status != PaperStatusFullyFunded {
		return nil, nil, errors.Wrap(ErrPaperStatus, "paper is not fully funded")
	}
	return &msg, &paper, nil
}

// TogglePauseHandler flips the platform pause switch.
type TogglePauseHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = TogglePauseHandler{}

func (h TogglePauseHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: togglePauseCost}, nil
}

func (h TogglePauseHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf.Paused = !conf.Paused
	if err := gconf.Save(db, "paperfund", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	state := []byte("paused")
	if !conf.Paused {
		state = []byte("resumed")
	}
	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("toggle_pause")},
			{Key: []byte("state"), Value: state},
		},
	}, nil
}

func (h TogglePauseHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Configuration, error) {
	var msg TogglePauseMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return conf, nil
}
