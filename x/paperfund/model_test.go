package paperfund

import (
	"strings"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

func TestPaperStatusTransitions(t *testing.T) {
	cases := map[string]struct {
		from    PaperStatus
		to      PaperStatus
		wantErr *errors.Error
	}{
		"draft can be published": {
			from: PaperStatusDraft,
			to:   PaperStatusPublished,
		},
		"draft can be rejected": {
			from: PaperStatusDraft,
			to:   PaperStatusRejected,
		},
		"published can become fully funded": {
			from: PaperStatusPublished,
			to:   PaperStatusFullyFunded,
		},
		"fully funded can be completed": {
			from: PaperStatusFullyFunded,
			to:   PaperStatusCompleted,
		},
		"draft cannot be completed": {
			from:    PaperStatusDraft,
			to:      PaperStatusCompleted,
			wantErr: ErrPaperStatus,
		},
		"published cannot go back to draft": {
			from:    PaperStatusPublished,
			to:      PaperStatusDraft,
			wantErr: ErrPaperStatus,
		},
		"fully funded cannot be rejected": {
			from:    PaperStatusFullyFunded,
			to:      PaperStatusRejected,
			wantErr: ErrPaperStatus,
		},
		"completed is terminal": {
			from:    PaperStatusCompleted,
			to:      PaperStatusPublished,
			wantErr: ErrPaperStatus,
		},
		"rejected is terminal": {
			from:    PaperStatusRejected,
			to:      PaperStatusPublished,
			wantErr: ErrPaperStatus,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := Paper{Status: tc.from}
			if err := p.SetStatus(tc.to); !tc.wantErr.Is(err) {
				t.Logf("want %q", tc.wantErr)
				t.Logf("got %q", err)
				t.Fatal("unexpected transition result")
			}
			if tc.wantErr == nil && p.Status != tc.to {
				t.Fatalf("status was not updated: %s", p.Status)
			}
			if tc.wantErr != nil && p.Status != tc.from {
				t.Fatalf("status must not change on a rejected transition: %s", p.Status)
			}
		})
	}
}

func TestPaperValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Paper)
		wantErr *errors.Error
	}{
		"valid model": {
			mutate:  nil,
			wantErr: nil,
		},
		"metadata is required": {
			mutate:  func(p *Paper) { p.Metadata = nil },
			wantErr: errors.ErrMetadata,
		},
		"author address must be valid": {
			mutate:  func(p *Paper) { p.Author = []byte("zzz") },
			wantErr: errors.ErrInput,
		},
		"title is required": {
			mutate:  func(p *Paper) { p.Title = "" },
			wantErr: errors.ErrModel,
		},
		"title must not be too long": {
			mutate:  func(p *Paper) { p.Title = strings.Repeat("x", maxTitleLen+1) },
			wantErr: errors.ErrModel,
		},
		"abstract is required": {
			mutate:  func(p *Paper) { p.Abstract = "" },
			wantErr: errors.ErrModel,
		},
		"content hash is required": {
			mutate:  func(p *Paper) { p.ContentHash = "" },
			wantErr: errors.ErrModel,
		},
		"at least one author name must be given": {
			mutate:  func(p *Paper) { p.Authors = nil },
			wantErr: errors.ErrModel,
		},
		"author names must not be empty": {
			mutate:  func(p *Paper) { p.Authors = []string{"A. Researcher", ""} },
			wantErr: errors.ErrModel,
		},
		"status must be known": {
			mutate:  func(p *Paper) { p.Status = PaperStatusRejected + 1 },
			wantErr: errors.ErrModel,
		},
		"funding goal must be positive": {
			mutate:  func(p *Paper) { p.FundingGoal = coin.NewCoin(0, 0, "IOV") },
			wantErr: errors.ErrModel,
		},
		"funding deadline is required": {
			mutate:  func(p *Paper) { p.FundingDeadline = 0 },
			wantErr: errors.ErrModel,
		},
		"created at is required": {
			mutate:  func(p *Paper) { p.CreatedAt = 0 },
			wantErr: errors.ErrModel,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			paper := Paper{
				Metadata:        &weave.Metadata{Schema: 1},
				Author:          weave.Address("f427d624ed29c1fae0e2"),
				Title:           "A title",
				Abstract:        "An abstract",
				ContentHash:     "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o",
				Authors:         []string{"A. Researcher"},
				Status:          PaperStatusDraft,
				FundingGoal:     coin.NewCoin(1000, 0, "IOV"),
				FundingCurrent:  coin.NewCoin(0, 0, "IOV"),
				FundingDeadline: 1575086400,
				CreatedAt:       1575000000,
			}
			if tc.mutate != nil {
				tc.mutate(&paper)
			}
			if err := paper.Validate(); !tc.wantErr.Is(err) {
				t.Logf("want %q", tc.wantErr)
				t.Logf("got %q", err)
				t.Fatal("unexpected validation result")
			}
		})
	}
}

func TestFundingRecordValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*FundingRecord)
		wantErr *errors.Error
	}{
		"valid model": {
			mutate:  nil,
			wantErr: nil,
		},
		"paper id is required": {
			mutate:  func(rec *FundingRecord) { rec.PaperID = nil },
			wantErr: errors.ErrModel,
		},
		"amount must be positive": {
			mutate:  func(rec *FundingRecord) { rec.Amount = coin.NewCoin(0, 0, "IOV") },
			wantErr: errors.ErrModel,
		},
		"fee must not be negative": {
			mutate:  func(rec *FundingRecord) { rec.Fee = coin.NewCoin(-1, 0, "IOV") },
			wantErr: errors.ErrModel,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := FundingRecord{
				Metadata:  &weave.Metadata{Schema: 1},
				PaperID:   []byte("paper-id"),
				Funder:    weave.Address("f427d624ed29c1fae0e2"),
				Amount:    coin.NewCoin(975, 0, "IOV"),
				Fee:       coin.NewCoin(25, 0, "IOV"),
				CreatedAt: 1575000000,
			}
			if tc.mutate != nil {
				tc.mutate(&rec)
			}
			if err := rec.Validate(); !tc.wantErr.Is(err) {
				t.Logf("want %q", tc.wantErr)
				t.Logf("got %q", err)
				t.Fatal("unexpected validation result")
			}
		})
	}
}
