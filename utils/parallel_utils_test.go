package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes differ by at most one and cover every index
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Every index lands in the bucket whose range holds it
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				bn, kMin, kMax := pm.GetBucket(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= kMin && k < kMax && kMin == mmin && kMax == mmax)
			}
		}
		// More buckets than indices leaves trailing buckets empty
		pm := NewPartitionMap(4, 2)
		assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 2}, {2, 2}}, pm.Partitions)
		bn, _, _ := pm.GetBucket(1)
		assert.Equal(t, 1, bn)
	}
	{ // Local and global indices invert each other
		pm := NewPartitionMap(3, 10)
		for k := 0; k < 10; k++ {
			kl, size, bn := pm.GetLocalK(k)
			assert.Equal(t, k, pm.GetGlobalK(kl, bn))
			assert.Equal(t, pm.GetBucketDimension(bn), size)
		}
		kl, size, bn := pm.GetLocalK(12)
		assert.Equal(t, []int{12, 10, -1}, []int{kl, size, bn})
		assert.Equal(t, 12, pm.GetGlobalK(kl, bn))
		assert.Equal(t, 10, pm.GetBucketDimension(-1))
		bn, _, _ = pm.GetBucket(10)
		assert.Equal(t, -1, bn)
		bn, _, _ = pm.GetBucket(-1)
		assert.Equal(t, -1, bn)
	}
}
