package util

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// StorageKey isolates key under namespace ns. Plain keys live under ns:k:;
// keys whose plain form exceeds maxLen (when > 0) are replaced by a
// fixed-size digest under ns:h: so they stay within backend limits
// (memcached-style stores cap keys at 250 bytes). The two prefixes never
// overlap, whatever the formatted key looks like.
func StorageKey(ns, key string, maxLen int) string {
	k := ns + ":k:" + key
	if maxLen <= 0 || len(k) <= maxLen {
		return k
	}
	return ns + ":h:" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}
