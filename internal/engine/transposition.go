package engine

import (
	"github.com/chego/engine/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// ttBucketSize is the number of entries sharing an index. Grouping entries
// into small buckets gives the replacement policy room to keep a deep entry
// around even when a shallow probe from the same generation wants the slot.
const ttBucketSize = 4

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint32     // Upper 32 bits of Zobrist hash for verification
	BestMove board.Move // Best move found
	Score    int16      // Score (bounded by flag)
	Depth    int8       // Search depth
	Flag     TTFlag     // Type of bound
	Age      uint8      // Generation for replacement
	IsPV     bool       // Whether this entry was stored from a PV node
}

func (e *TTEntry) empty() bool {
	return e.Depth == 0 && e.Key == 0 && e.BestMove == board.NoMove
}

// ttBucket is a small cluster of entries sharing one index.
type ttBucket [ttBucketSize]TTEntry

// TranspositionTable is a hash table for storing search results.
type TranspositionTable struct {
	buckets []ttBucket
	size    uint64 // number of buckets
	mask    uint64
	age     uint8

	// Statistics
	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	bucketSize := uint64(ttBucketSize) * 16 // approximate bytes per TTEntry
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketSize

	// Round down to power of 2 for fast modulo
	numBuckets = roundDownToPowerOf2(numBuckets)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &TranspositionTable{
		buckets: make([]ttBucket, numBuckets),
		size:    numBuckets,
		mask:    numBuckets - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up a position in the transposition table.
// Returns the entry and true if found, otherwise returns empty entry and false.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++

	idx := hash & tt.mask
	bucket := &tt.buckets[idx]
	key := uint32(hash >> 32)

	for i := range bucket {
		e := &bucket[i]
		if !e.empty() && e.Key == key {
			tt.hits++
			e.Age = tt.age // touched this generation, worth keeping a while longer
			return *e, true
		}
	}

	return TTEntry{}, false
}

// Store saves a position in the transposition table.
//
// Replacement picks the lowest-value entry in the bucket, where value is
// (256 - (age_now - age_stored) - 1) + depth_stored*256: older generations
// and shallower searches are preferred victims. An empty slot always wins
// outright. A store that would write the exact same depth and best move
// as the entry already sitting at this key is skipped — it changes nothing
// worth a torn write.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, isPV bool) {
	idx := hash & tt.mask
	bucket := &tt.buckets[idx]
	key := uint32(hash >> 32)

	replaceIdx := 0
	replaceVal := int(^uint(0) >> 1)

	for i := range bucket {
		e := &bucket[i]
		if e.empty() {
			replaceIdx = i
			replaceVal = -1
			break
		}
		if e.Key == key {
			if int(e.Depth) == depth && e.BestMove == bestMove {
				return
			}
			// Same key, same generation: only give up a deeper search to a
			// shallower one if this generation is already stale.
			if e.Age == tt.age && depth < int(e.Depth) {
				return
			}
			replaceIdx = i
			replaceVal = -1
			break
		}
		val := (256 - int(tt.age-e.Age) - 1) + int(e.Depth)*256
		if val < replaceVal {
			replaceVal = val
			replaceIdx = i
		}
	}

	e := &bucket[replaceIdx]
	e.Key = key
	e.BestMove = bestMove
	e.Score = int16(score)
	e.Depth = int8(depth)
	e.Flag = flag
	e.Age = tt.age
	e.IsPV = isPV
}

// NewSearch increments the age counter for a new search.
// This helps with replacement decisions.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = ttBucket{}
	}
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	used := 0
	sampleSize := 1000 / ttBucketSize
	if sampleSize == 0 {
		sampleSize = 1
	}
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	total := 0
	for i := 0; i < sampleSize; i++ {
		for j := range tt.buckets[i] {
			total++
			e := &tt.buckets[i][j]
			if !e.empty() && e.Age == tt.age {
				used++
			}
		}
	}
	if total == 0 {
		return 0
	}

	return (used * 1000) / total
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size * ttBucketSize
}

// AdjustScoreFromTT adjusts a score read from the transposition table back
// into a score relative to the current search node. Mate scores are stored
// relative to the node they were found at (mate-in-n-from-node) so that an
// entry found at one ply is still valid when probed from another.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
