package paperfund

import (
	"strings"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

func TestSubmitPaperMsgValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*SubmitPaperMsg)
		wantErr *errors.Error
	}{
		"valid message": {
			mutate:  nil,
			wantErr: nil,
		},
		"metadata is required": {
			mutate:  func(msg *SubmitPaperMsg) { msg.Metadata = nil },
			wantErr: errors.ErrMetadata,
		},
		"title is required": {
			mutate:  func(msg *SubmitPaperMsg) { msg.Title = "" },
			wantErr: errors.ErrMsg,
		},
		"abstract must not be too long": {
			mutate:  func(msg *SubmitPaperMsg) { msg.Abstract = strings.Repeat("x", maxAbstractLen+1) },
			wantErr: errors.ErrMsg,
		},
		"too many author names": {
			mutate: func(msg *SubmitPaperMsg) {
				msg.Authors = make([]string, maxAuthors+1)
				for i := range msg.Authors {
					msg.Authors[i] = "A. Researcher"
				}
			},
			wantErr: errors.ErrMsg,
		},
		"funding goal must be positive": {
			mutate:  func(msg *SubmitPaperMsg) { msg.FundingGoal = coin.NewCoin(0, 0, "IOV") },
			wantErr: errors.ErrMsg,
		},
		"funding period must not be zero": {
			mutate:  func(msg *SubmitPaperMsg) { msg.FundingPeriodDays = 0 },
			wantErr: errors.ErrMsg,
		},
		"funding period must not be longer than a year": {
			mutate:  func(msg *SubmitPaperMsg) { msg.FundingPeriodDays = maxFundingPeriodDays + 1 },
			wantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg := SubmitPaperMsg{
				Metadata:          &weave.Metadata{Schema: 1},
				Title:             "A title",
				Abstract:          "An abstract",
				ContentHash:       "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o",
				Authors:           []string{"A. Researcher"},
				FundingGoal:       coin.NewCoin(1000, 0, "IOV"),
				FundingPeriodDays: 30,
			}
			if tc.mutate != nil {
				tc.mutate(&msg)
			}
			if err := msg.Validate(); !tc.wantErr.Is(err) {
				t.Logf("want %q", tc.wantErr)
				t.Logf("got %q", err)
				t.Fatal("unexpected validation result")
			}
		})
	}
}

func TestUpdateConfigurationMsgValidate(t *testing.T) {
	cases := map[string]struct {
		patch   *Configuration
		wantErr *errors.Error
	}{
		"fee rate and minimum goal can be patched": {
			patch: &Configuration{
				PlatformFeeRate:    100,
				MinimumFundingGoal: coin.NewCoin(500, 0, "IOV"),
			},
			wantErr: nil,
		},
		"an empty patch is a no-op but valid": {
			patch:   &Configuration{},
			wantErr: nil,
		},
		"patch is required": {
			patch:   nil,
			wantErr: errors.ErrMsg,
		},
		"owner cannot be changed": {
			patch: &Configuration{
				Owner: weave.Address("f427d624ed29c1fae0e2"),
			},
			wantErr: errors.ErrMsg,
		},
		"collector address cannot be changed": {
			patch: &Configuration{
				CollectorAddress: weave.Address("f427d624ed29c1fae0e2"),
			},
			wantErr: errors.ErrMsg,
		},
		"total funding cannot be changed": {
			patch: &Configuration{
				TotalFunding: coin.NewCoin(1, 0, "IOV"),
			},
			wantErr: errors.ErrMsg,
		},
		"pause state cannot be patched": {
			patch: &Configuration{
				Paused: true,
			},
			wantErr: errors.ErrMsg,
		},
		"fee rate is capped": {
			patch: &Configuration{
				PlatformFeeRate: maxPlatformFeeRate + 1,
			},
			wantErr: errors.ErrMsg,
		},
		"minimum funding goal must not be negative": {
			patch: &Configuration{
				MinimumFundingGoal: coin.NewCoin(-1, 0, "IOV"),
			},
			wantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg := UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch:    tc.patch,
			}
			if err := msg.Validate(); !tc.wantErr.Is(err) {
				t.Logf("want %q", tc.wantErr)
				t.Logf("got %q", err)
				t.Fatal("unexpected validation result")
			}
		})
	}
}
