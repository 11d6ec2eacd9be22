package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"realty-service/internal/config"
)

// BucketingManager assigns stable partition buckets for Scylla partition
// keys. Identity rows and property rows are spread across a fixed number
// of buckets derived from their id.
type BucketingManager struct {
	identityBuckets int
	propertyBuckets int
	hasherPool      sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		identityBuckets: cfg.Bucketing.IdentityBuckets,
		propertyBuckets: cfg.Bucketing.PropertyBuckets,
	}

	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

// IdentityBucket returns the bucket for an admin/agent/user id.
func (bm *BucketingManager) IdentityBucket(id string) int {
	return bm.getBucket(id, bm.identityBuckets)
}

// PropertyBucket returns the bucket for a property id (pending or live;
// the bucket follows the id through promotion).
func (bm *BucketingManager) PropertyBucket(id string) int {
	return bm.getBucket(id, bm.propertyBuckets)
}

// DateBucket tags audit events with their UTC day.
func (bm *BucketingManager) DateBucket() string {
	return time.Now().UTC().Format("2006-01-02")
}

func (bm *BucketingManager) getBucket(key string, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}
	return int(bm.getHash(key) % uint64(numBuckets))
}

func (bm *BucketingManager) getHash(key string) uint64 {
	hasher := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}
