package config

import (
	"path/filepath"

	dbm "github.com/tendermint/tm-db"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
)

// DBContext specifies config information for loading a new DB.
type DBContext struct {
	ID     string
	Config *Config
}

// DBProvider takes a DBContext and returns an instantiated DB.
type DBProvider func(*DBContext) (kv.Backend, error)

// DefaultDBProvider returns a database using the DBBackend and DBDir
// specified in the Config.
func DefaultDBProvider(ctx *DBContext) (kv.Backend, error) {
	if ctx.Config.DBBackend == DBBackendPebble {
		db, err := kv.NewPebble(filepath.Join(ctx.Config.DBDir(), ctx.ID+".db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := dbm.NewDB(ctx.ID, dbm.BackendType(ctx.Config.DBBackend), ctx.Config.DBDir())
	if err != nil {
		return nil, err
	}
	return kv.NewTMDB(db), nil
}
