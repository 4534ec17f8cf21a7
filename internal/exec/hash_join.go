package exec

import (
	"encoding/binary"
	"math"

	"github.com/spaolacci/murmur3"

	"github.com/WoodRank/queryrunner/internal/expr"
	"github.com/WoodRank/queryrunner/internal/record"
)

var (
	_ Operator = (*HashJoin)(nil)
)

// HashJoin performs an equijoin (spec.md §4.9): the build side is read
// fully into an in-memory hash table keyed by its join key's Value, then
// the probe side is streamed through it, emitting probe‖build for every
// match in build-insertion order.
//
// Grounded on original_source/src/operator.h's HashJoinOperator
// (build/probe phase split, chained per-key buckets, match-iterator
// state across Next calls). Bucketing uses murmur3 the way
// ryogrid-SamehadaDB's container/hash.GenHashMurMur hashes a serialized
// value (see DESIGN.md) rather than Go's native map hasher, keeping the
// "Value must be usable as a hash key" design concern (spec.md §9) an
// explicit, inspectable piece of the join rather than implicit in `==`.
type HashJoin struct {
	Probe        Operator
	Build        Operator
	ProbeKeyExpr expr.Expression
	BuildKeyExpr expr.Expression

	outputSchema *record.Schema

	buckets map[uint32][]bucketEntry

	probeTuple record.Tuple
	hasProbe   bool
	matches    []record.Tuple
	matchIndex int
}

type bucketEntry struct {
	key   record.Value
	tuple record.Tuple
}

func NewHashJoin(probe, build Operator, probeKeyExpr, buildKeyExpr expr.Expression) *HashJoin {
	return &HashJoin{
		Probe:        probe,
		Build:        build,
		ProbeKeyExpr: probeKeyExpr,
		BuildKeyExpr: buildKeyExpr,
		outputSchema: record.Merge(probe.Schema(), build.Schema()),
	}
}

func (j *HashJoin) Schema() *record.Schema { return j.outputSchema }

// Open runs the build phase (read Build fully into the hash table, then
// close it) followed by opening the probe side, exactly as spec.md §4.9
// describes.
func (j *HashJoin) Open() error {
	j.buckets = make(map[uint32][]bucketEntry)

	if err := j.Build.Open(); err != nil {
		return err
	}
	if err := j.runBuildPhase(); err != nil {
		j.Build.Close()
		return err
	}
	if err := j.Build.Close(); err != nil {
		return err
	}

	if err := j.Probe.Open(); err != nil {
		return err
	}
	j.hasProbe = false
	j.matches = nil
	j.matchIndex = 0
	return nil
}

func (j *HashJoin) runBuildPhase() error {
	for {
		var buildTuple record.Tuple
		ok, err := j.Build.Next(&buildTuple)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		key, err := j.BuildKeyExpr.Evaluate(buildTuple, j.Build.Schema())
		if err != nil {
			return err
		}
		h := hashValue(key)
		j.buckets[h] = append(j.buckets[h], bucketEntry{key: key, tuple: buildTuple})
	}
}

// Close releases the probe side. The build side is always closed
// before Open returns, successfully or not (see runBuildPhase's
// caller), so there is nothing left for Close to release on that side.
func (j *HashJoin) Close() error {
	return j.Probe.Close()
}

func (j *HashJoin) Next(tuple *record.Tuple) (bool, error) {
	for {
		if j.hasProbe && j.matchIndex < len(j.matches) {
			*tuple = record.Concat(j.probeTuple, j.matches[j.matchIndex])
			j.matchIndex++
			return true, nil
		}

		ok, err := j.Probe.Next(&j.probeTuple)
		if err != nil {
			return false, err
		}
		if !ok {
			j.hasProbe = false
			return false, nil
		}
		j.hasProbe = true

		key, err := j.ProbeKeyExpr.Evaluate(j.probeTuple, j.Probe.Schema())
		if err != nil {
			return false, err
		}

		j.matches = j.matches[:0]
		for _, entry := range j.buckets[hashValue(key)] {
			if entry.key == key {
				j.matches = append(j.matches, entry.tuple)
			}
		}
		j.matchIndex = 0
	}
}

// hashValue serializes a Value's variant tag and payload into bytes and
// hashes them with murmur3, so that equal values always land in the same
// bucket and values of different variants hash different byte strings.
// Next compares keys within a bucket with ==, so a hash collision never
// yields a match between unequal values (spec.md §4.9's key semantics).
func hashValue(v record.Value) uint32 {
	buf := make([]byte, 0, 9)
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case record.KindInt:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Int))
	case record.KindFloat:
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v.Float))
	case record.KindString:
		buf = append(buf, []byte(v.Str)...)
	case record.KindBool:
		if v.Bool {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return murmur3.Sum32(buf)
}
