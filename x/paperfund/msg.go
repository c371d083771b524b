package paperfund

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &SubmitPaperMsg{}, migration.NoModification)
	migration.MustRegister(1, &PublishPaperMsg{}, migration.NoModification)
	migration.MustRegister(1, &FundPaperMsg{}, migration.NoModification)
	migration.MustRegister(1, &VotePaperMsg{}, migration.NoModification)
	migration.MustRegister(1, &ClaimFundsMsg{}, migration.NoModification)
	migration.MustRegister(1, &TogglePauseMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*SubmitPaperMsg)(nil)

func (SubmitPaperMsg) Path() string {
	return "paperfund/submit_paper"
}

func (msg *SubmitPaperMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if n := len(msg.Title); n == 0 || n > maxTitleLen {
		return errors.Wrapf(errors.ErrMsg, "title length must be between 1 and %d", maxTitleLen)
	}
	if n := len(msg.Abstract); n == 0 || n > maxAbstractLen {
		return errors.Wrapf(errors.ErrMsg, "abstract length must be between 1 and %d", maxAbstractLen)
	}
	if n := len(msg.ContentHash); n == 0 || n > maxContentHashLen {
		return errors.Wrapf(errors.ErrMsg, "content hash length must be between 1 and %d", maxContentHashLen)
	}
	if n := len(msg.Authors); n == 0 || n > maxAuthors {
		return errors.Wrapf(errors.ErrMsg, "authors count must be between 1 and %d", maxAuthors)
	}
	for i, a := range msg.Authors {
		if len(a) == 0 {
			return errors.Wrapf(errors.ErrMsg, "author name %d is empty", i)
		}
	}
	if err := msg.FundingGoal.Validate(); err != nil {
		return errors.Wrap(err, "funding goal")
	}
	if !msg.FundingGoal.IsPositive() {
		return errors.Wrap(errors.ErrMsg, "funding goal must be a positive amount")
	}
	if msg.FundingPeriodDays < minFundingPeriodDays || msg.FundingPeriodDays > maxFundingPeriodDays {
		return errors.Wrapf(errors.ErrMsg, "funding period must be between %d and %d days",
			minFundingPeriodDays, maxFundingPeriodDays)
	}
	return nil
}

var _ weave.Msg = (*PublishPaperMsg)(nil)

func (PublishPaperMsg) Path() string {
	return "paperfund/publish_paper"
}

func (msg *PublishPaperMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(msg.PaperID) == 0 {
		return errors.Wrap(errors.ErrMsg, "paper id is required")
	}
	return nil
}

var _ weave.Msg = (*FundPaperMsg)(nil)

func (FundPaperMsg) Path() string {
	return "paperfund/fund_paper"
}

func (msg *FundPaperMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(msg.PaperID) == 0 {
		return errors.Wrap(errors.ErrMsg, "paper id is required")
	}
	if err := msg.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !msg.Amount.IsPositive() {
		return errors.Wrap(errors.ErrMsg, "amount must be a positive amount")
	}
	return nil
}

var _ weave.Msg = (*VotePaperMsg)(nil)

func (VotePaperMsg) Path() string {
	return "paperfund/vote_paper"
}

func (msg *VotePaperMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(msg.PaperID) == 0 {
		return errors.Wrap(errors.ErrMsg, "paper id is required")
	}
	return nil
}

var _ weave.Msg = (*ClaimFundsMsg)(nil)

func (ClaimFundsMsg) Path() string {
	return "paperfund/claim_funds"
}

func (msg *ClaimFundsMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(msg.PaperID) == 0 {
		return errors.Wrap(errors.ErrMsg, "paper id is required")
	}
	return nil
}

var _ weave.Msg = (*TogglePauseMsg)(nil)

func (TogglePauseMsg) Path() string {
	return "paperfund/toggle_pause"
}

func (msg *TogglePauseMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return nil
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "paperfund/update_configuration"
}

func (msg *UpdateConfigurationMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if msg.Patch == nil {
		return errors.Wrap(errors.ErrMsg, "patch is required")
	}
	// Only the fee rate and the minimum funding goal can be reconfigured.
	// All other fields are either managed by dedicated handlers or fixed
	// at genesis.
	switch {
	case len(msg.Patch.Owner) != 0:
		return errors.Wrap(errors.ErrMsg, "owner cannot be changed")
	case len(msg.Patch.CollectorAddress) != 0:
		return errors.Wrap(errors.ErrMsg, "collector address cannot be changed")
	case msg.Patch.MaxFundingPeriodDays != 0:
		return errors.Wrap(errors.ErrMsg, "max funding period cannot be changed")
	case !msg.Patch.TotalFunding.IsZero():
		return errors.Wrap(errors.ErrMsg, "total funding is maintained by the funding handler")
	case msg.Patch.Paused:
		return errors.Wrap(errors.ErrMsg, "pause state is managed by the toggle pause message")
	}
	if msg.Patch.PlatformFeeRate > maxPlatformFeeRate {
		return errors.Wrapf(errors.ErrMsg, "platform fee rate must not be greater than %d basis points", maxPlatformFeeRate)
	}
	if !msg.Patch.MinimumFundingGoal.IsZero() {
		if err := msg.Patch.MinimumFundingGoal.Validate(); err != nil {
			return errors.Wrap(err, "minimum funding goal")
		}
		if !msg.Patch.MinimumFundingGoal.IsPositive() {
			return errors.Wrap(errors.ErrMsg, "minimum funding goal must be a positive amount")
		}
	}
	return nil
}
