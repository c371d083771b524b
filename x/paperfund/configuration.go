package paperfund

import (
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

// maxPlatformFeeRate is the upper bound for the fee rate, expressed in basis
// points. 1000 means the platform can never take more than 10% cut.
const maxPlatformFeeRate = 1000

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "CollectorAddress", c.CollectorAddress.Validate())
	if c.PlatformFeeRate > maxPlatformFeeRate {
		errs = errors.AppendField(errs, "PlatformFeeRate",
			errors.Wrapf(errors.ErrInput, "must not be greater than %d basis points", maxPlatformFeeRate))
	}
	if err := c.MinimumFundingGoal.Validate(); err != nil {
		errs = errors.AppendField(errs, "MinimumFundingGoal", err)
	} else if !c.MinimumFundingGoal.IsPositive() {
		errs = errors.AppendField(errs, "MinimumFundingGoal",
			errors.Wrap(errors.ErrAmount, "must be a positive amount"))
	}
	errs = errors.AppendField(errs, "TotalFunding", c.TotalFunding.Validate())
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "paperfund", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

// mustNotBePaused loads the configuration and ensures the platform pause
// switch is off. It returns the loaded configuration so that callers do not
// have to load it twice.
func mustNotBePaused(db gconf.ReadStore) (*Configuration, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if conf.Paused {
		return nil, errors.Wrap(ErrPaused, "operations disabled")
	}
	return conf, nil
}
