package paperfund

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Paper{}, migration.NoModification)
	migration.MustRegister(1, &FundingRecord{}, migration.NoModification)
	migration.MustRegister(1, &VoteRecord{}, migration.NoModification)
}

const (
	maxTitleLen       = 100
	maxAbstractLen    = 1000
	maxContentHashLen = 100
	maxAuthors        = 10

	minFundingPeriodDays = 1
	maxFundingPeriodDays = 365
)

var _ orm.CloneableData = (*Paper)(nil)

func (p *Paper) Validate() error {
	if err := p.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := p.Author.Validate(); err != nil {
		return errors.Wrap(err, "author")
	}
	if n := len(p.Title); n == 0 || n > maxTitleLen {
		return errors.Wrapf(errors.ErrModel, "title length must be between 1 and %d", maxTitleLen)
	}
	if n := len(p.Abstract); n == 0 || n > maxAbstractLen {
		return errors.Wrapf(errors.ErrModel, "abstract length must be between 1 and %d", maxAbstractLen)
	}
	if n := len(p.ContentHash); n == 0 || n > maxContentHashLen {
		return errors.Wrapf(errors.ErrModel, "content hash length must be between 1 and %d", maxContentHashLen)
	}
	if n := len(p.Authors); n == 0 || n > maxAuthors {
		return errors.Wrapf(errors.ErrModel, "authors count must be between 1 and %d", maxAuthors)
	}
	for i, a := range p.Authors {
		if len(a) == 0 {
			return errors.Wrapf(errors.ErrModel, "author name %d is empty", i)
		}
	}
	if p.Status < PaperStatusDraft || p.Status > PaperStatusRejected {
		return errors.Wrapf(errors.ErrModel, "invalid status %d", p.Status)
	}
	if err := p.FundingGoal.Validate(); err != nil {
		return errors.Wrap(err, "funding goal")
	}
	if !p.FundingGoal.IsPositive() {
		return errors.Wrap(errors.ErrModel, "funding goal must be a positive amount")
	}
	if err := p.FundingCurrent.Validate(); err != nil {
		return errors.Wrap(err, "funding current")
	}
	if p.FundingDeadline == 0 {
		return errors.Wrap(errors.ErrModel, "funding deadline is required")
	}
	if err := p.FundingDeadline.Validate(); err != nil {
		return errors.Wrap(err, "funding deadline")
	}
	if p.CreatedAt == 0 {
		return errors.Wrap(errors.ErrModel, "created at is required")
	}
	return nil
}

func (p *Paper) Copy() orm.CloneableData {
	authors := make([]string, len(p.Authors))
	copy(authors, p.Authors)
	return &Paper{
		Metadata:        p.Metadata.Copy(),
		Author:          p.Author.Clone(),
		Title:           p.Title,
		Abstract:        p.Abstract,
		ContentHash:     p.ContentHash,
		Authors:         authors,
		Status:          p.Status,
		FundingGoal:     p.FundingGoal,
		FundingCurrent:  p.FundingCurrent,
		FundingDeadline: p.FundingDeadline,
		Upvotes:         p.Upvotes,
		Downvotes:       p.Downvotes,
		ReviewScore:     p.ReviewScore,
		ReviewCount:     p.ReviewCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// validPaperTransitions declares all status changes a paper can go through.
// Any status change not listed here must be rejected.
var validPaperTransitions = map[PaperStatus][]PaperStatus{
	PaperStatusDraft:       {PaperStatusPublished, PaperStatusRejected},
	PaperStatusPublished:   {PaperStatusFullyFunded},
	PaperStatusFullyFunded: {PaperStatusCompleted},
}

// SetStatus moves the paper to a new status. It fails with ErrPaperStatus if
// the transition is not allowed.
func (p *Paper) SetStatus(newStatus PaperStatus) error {
	for _, s := range validPaperTransitions[p.Status] {
		if s == newStatus {
			p.Status = newStatus
			return nil
		}
	}
	return errors.Wrapf(ErrPaperStatus, "cannot change %s to %s", p.Status, newStatus)
}

// AcceptsFunding returns true if contributions towards this paper are
// allowed. Once the goal is reached no further contributions are accepted,
// only the contribution that crosses the goal may overshoot it.
func (p *Paper) AcceptsFunding() bool {
	return p.Status == PaperStatusPublished
}

// IsPublished returns true for every status that makes the paper publicly
// visible and therefore open for voting.
func (p *Paper) IsPublished() bool {
	switch p.Status {
	case PaperStatusPublished, PaperStatusFullyFunded, PaperStatusCompleted:
		return true
	}
	return false
}

// NewPaperBucket returns a bucket for managing papers.
func NewPaperBucket() orm.ModelBucket {
	b := orm.NewModelBucket("paper", &Paper{},
		orm.WithIDSequence(paperSeq),
		orm.WithIndex("author", paperAuthor, false),
	)
	return migration.NewModelBucket("paperfund", b)
}

var paperSeq = orm.NewSequence("paper", "id")

// PaperAccount returns the address of the escrow account that holds the
// contributions collected for the paper stored under the given key. Only the
// claim handler can authorize transfers out of this account.
func PaperAccount(key []byte) weave.Address {
	return weave.NewCondition("paperfnd", "seq", key).Address()
}

func paperAuthor(obj orm.Object) ([]byte, error) {
	p, err := asPaper(obj)
	if err != nil {
		return nil, err
	}
	return p.Author, nil
}

func asPaper(obj orm.Object) (*Paper, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	p, ok := obj.Value().(*Paper)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of Paper")
	}
	return p, nil
}

var _ orm.CloneableData = (*FundingRecord)(nil)

func (rec *FundingRecord) Validate() error {
	if err := rec.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(rec.PaperID) == 0 {
		return errors.Wrap(errors.ErrModel, "paper id is required")
	}
	if err := rec.Funder.Validate(); err != nil {
		return errors.Wrap(err, "funder")
	}
	if err := rec.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !rec.Amount.IsPositive() {
		return errors.Wrap(errors.ErrModel, "amount must be a positive amount")
	}
	if err := rec.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	if !rec.Fee.IsNonNegative() {
		return errors.Wrap(errors.ErrModel, "fee must not be negative")
	}
	return nil
}

func (rec *FundingRecord) Copy() orm.CloneableData {
	return &FundingRecord{
		Metadata:  rec.Metadata.Copy(),
		PaperID:   append([]byte(nil), rec.PaperID...),
		Funder:    rec.Funder.Clone(),
		Amount:    rec.Amount,
		Fee:       rec.Fee,
		CreatedAt: rec.CreatedAt,
	}
}

// NewFundingRecordBucket returns a bucket for managing funding records. The
// primary key is the paper key combined with the funder address so that each
// funder can contribute to any paper at most once.
func NewFundingRecordBucket() orm.ModelBucket {
	b := orm.NewModelBucket("fundrec", &FundingRecord{},
		orm.WithIndex("paper", fundingRecordPaper, false),
	)
	return migration.NewModelBucket("paperfund", b)
}

func fundingRecordKey(paperID []byte, funder weave.Address) []byte {
	key := make([]byte, 0, len(paperID)+len(funder))
	key = append(key, paperID...)
	return append(key, funder...)
}

func fundingRecordPaper(obj orm.Object) ([]byte, error) {
	rec, err := asFundingRecord(obj)
	if err != nil {
		return nil, err
	}
	return rec.PaperID, nil
}

func asFundingRecord(obj orm.Object) (*FundingRecord, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	rec, ok := obj.Value().(*FundingRecord)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of FundingRecord")
	}
	return rec, nil
}

var _ orm.CloneableData = (*VoteRecord)(nil)

func (rec *VoteRecord) Validate() error {
	if err := rec.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(rec.PaperID) == 0 {
		return errors.Wrap(errors.ErrModel, "paper id is required")
	}
	if err := rec.Voter.Validate(); err != nil {
		return errors.Wrap(err, "voter")
	}
	if rec.Weight < 0 {
		return errors.Wrap(errors.ErrModel, "weight must not be negative")
	}
	return nil
}

func (rec *VoteRecord) Copy() orm.CloneableData {
	return &VoteRecord{
		Metadata:  rec.Metadata.Copy(),
		PaperID:   append([]byte(nil), rec.PaperID...),
		Voter:     rec.Voter.Clone(),
		Upvote:    rec.Upvote,
		Weight:    rec.Weight,
		CreatedAt: rec.CreatedAt,
	}
}

// NewVoteRecordBucket returns a bucket for managing vote records. The primary
// key is the paper key combined with the voter address so that each voter can
// vote on any paper at most once.
func NewVoteRecordBucket() orm.ModelBucket {
	b := orm.NewModelBucket("voterec", &VoteRecord{},
		orm.WithIndex("paper", voteRecordPaper, false),
	)
	return migration.NewModelBucket("paperfund", b)
}

func voteRecordKey(paperID []byte, voter weave.Address) []byte {
	key := make([]byte, 0, len(paperID)+len(voter))
	key = append(key, paperID...)
	return append(key, voter...)
}

func voteRecordPaper(obj orm.Object) ([]byte, error) {
	rec, err := asVoteRecord(obj)
	if err != nil {
		return nil, err
	}
	return rec.PaperID, nil
}

func asVoteRecord(obj orm.Object) (*VoteRecord, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	rec, ok := obj.Value().(*VoteRecord)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "can only take index of VoteRecord")
	}
	return rec, nil
}
