package utils

import "sort"

// PartitionMap splits the index range [0, MaxIndex) into ParallelDegree
// contiguous buckets whose sizes differ by at most one.
type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// GetBucket finds the bucket holding index k, bucketNum is -1 when k is out
// of range
func (pm *PartitionMap) GetBucket(k int) (bucketNum, min, max int) {
	if k < 0 || k >= pm.MaxIndex {
		return -1, 0, 0
	}
	// First bucket whose end lies past k; empty buckets are skipped over
	bucketNum = sort.Search(pm.ParallelDegree, func(n int) bool {
		return pm.Partitions[n][1] > k
	})
	min, max = pm.GetBucketRange(bucketNum)
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

// GetLocalK converts a global index to its offset within its bucket, along
// with the bucket size and number. bn is -1 when baseK is out of range.
func (pm *PartitionMap) GetLocalK(baseK int) (k, Kmax, bn int) {
	var (
		kmin, kmax int
	)
	if bn, kmin, kmax = pm.GetBucket(baseK); bn == -1 {
		return baseK, pm.MaxIndex, -1
	}
	Kmax = kmax - kmin
	k = baseK - kmin
	return
}

// GetGlobalK is the inverse of GetLocalK, bucket -1 stands for the whole range
func (pm *PartitionMap) GetGlobalK(kLocal, bn int) (kGlobal int) {
	if bn == -1 {
		return kLocal
	}
	return pm.Partitions[bn][0] + kLocal
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		return pm.MaxIndex
	}
	k1, k2 := pm.GetBucketRange(bn)
	return k2 - k1
}

// Split1D returns the range of bucket threadNum. The first MaxIndex %
// ParallelDegree buckets hold one extra index.
func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
	)
	bucket[0] = threadNum*Npart + min(threadNum, remainder)
	bucket[1] = bucket[0] + Npart
	if threadNum < remainder {
		bucket[1]++
	}
	return
}
