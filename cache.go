package poster

import (
	"sync"
)

// globalCache holds fetched background photos and logos keyed by path or
// URL, so batch variants reusing the same source do not re-download it.
var globalCache = &cache{}

type cache struct {
	m sync.Map
}

func LoadImageCache(key string) (*Image, bool) {
	if v, ok := globalCache.m.Load(key); ok {
		if i, ok := v.(*Image); ok {
			return i, true
		}
	}
	return nil, false
}

func StoreImageCache(key string, i *Image) {
	if i == nil {
		return
	}
	globalCache.m.Store(key, i)
}
