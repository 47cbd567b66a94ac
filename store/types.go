package store

import "github.com/iov-one/autoshare"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = autoshare.ReadOnlyKVStore
	SetDeleter       = autoshare.SetDeleter
	KVStore          = autoshare.KVStore
	Batch            = autoshare.Batch
	CacheableKVStore = autoshare.CacheableKVStore
	KVCacheWrap      = autoshare.KVCacheWrap
	CommitKVStore    = autoshare.CommitKVStore
	CommitID         = autoshare.CommitID
	Renewer          = autoshare.Renewer
)
