package paperfund

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial platform configuration from genesis and
// save it to the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	var conf Configuration
	switch err := gconf.Load(kv, "paperfund", &conf); {
	case err == nil:
		return errors.Wrap(errors.ErrDuplicate, "configuration already initialized")
	case errors.ErrNotFound.Is(err):
		// Expected, the configuration is created below.
	default:
		return errors.Wrap(err, "load configuration")
	}
	return gconf.InitConfig(kv, opts, "paperfund", &Configuration{})
}
