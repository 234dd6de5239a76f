package runtime

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Show renders a value as a lazy stream of text
type Show[T any] func(T) Stream

// Hash maps a value to a polynomial-hash contribution. Equal values must
// produce equal hashes.
type Hash[T any] func(T) int64

// Equal is a structural equivalence relation
type Equal[T any] func(a, b T) bool

// Ord is a total order consistent with Equal
type Ord[T any] func(a, b T) Ordering

// Int instances (Int maps to int64)

// ShowInt renders an integer in base 10
func ShowInt(v int64) Stream { return Text(strconv.FormatInt(v, 10)) }

// HashInt is the identity, so small integers contribute their own value
func HashInt(v int64) int64 { return v }

// EqualInt compares integers
func EqualInt(a, b int64) bool { return a == b }

// OrdInt orders integers numerically
func OrdInt(a, b int64) Ordering { return FromCompare(cmp.Compare(a, b)) }

// String instances

// ShowString renders a string as a Go quoted literal
func ShowString(v string) Stream { return Text(strconv.Quote(v)) }

// HashString hashes the string's bytes with xxhash
func HashString(v string) int64 { return int64(xxhash.Sum64String(v)) }

// EqualString compares strings
func EqualString(a, b string) bool { return a == b }

// OrdString orders strings lexically by byte
func OrdString(a, b string) Ordering { return FromCompare(cmp.Compare(a, b)) }

// Bool instances

// ShowBool renders true or false
func ShowBool(v bool) Stream { return Text(strconv.FormatBool(v)) }

// HashBool maps false to 0 and true to 1
func HashBool(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// EqualBool compares booleans
func EqualBool(a, b bool) bool { return a == b }

// OrdBool orders false before true
func OrdBool(a, b bool) Ordering {
	switch {
	case a == b:
		return EQ
	case !a:
		return LT
	default:
		return GT
	}
}

// Float instances. Equality follows the total order of cmp.Compare: NaN
// equals NaN and sorts first, -0 equals +0.

// ShowFloat renders the shortest representation that round-trips
func ShowFloat(v float64) Stream { return Text(strconv.FormatFloat(v, 'g', -1, 64)) }

// HashFloat hashes the canonical bit pattern
func HashFloat(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return int64(0x7ff8000000000001)
	case v == 0:
		return 0
	}
	return int64(math.Float64bits(v))
}

// EqualFloat compares floats under the cmp.Compare total order
func EqualFloat(a, b float64) bool { return cmp.Compare(a, b) == 0 }

// OrdFloat orders floats with NaN first
func OrdFloat(a, b float64) Ordering { return FromCompare(cmp.Compare(a, b)) }

// UUID instances

// ShowUUID renders the canonical hyphenated form
func ShowUUID(v uuid.UUID) Stream { return Text(v.String()) }

// HashUUID hashes the 16 raw bytes with xxhash
func HashUUID(v uuid.UUID) int64 { return int64(xxhash.Sum64(v[:])) }

// EqualUUID compares UUIDs
func EqualUUID(a, b uuid.UUID) bool { return a == b }

// OrdUUID orders UUIDs by their bytes
func OrdUUID(a, b uuid.UUID) Ordering { return FromCompare(bytes.Compare(a[:], b[:])) }

// Time instances compare instants, ignoring location

// ShowTime renders RFC 3339 with nanoseconds
func ShowTime(v time.Time) Stream { return Text(v.Format(time.RFC3339Nano)) }

// HashTime hashes the instant
func HashTime(v time.Time) int64 { return v.UnixNano() }

// EqualTime reports whether both times are the same instant
func EqualTime(a, b time.Time) bool { return a.Equal(b) }

// OrdTime orders instants chronologically
func OrdTime(a, b time.Time) Ordering { return FromCompare(a.Compare(b)) }

// Bytes instances

// ShowBytes renders the bytes as lowercase hex
func ShowBytes(v []byte) Stream { return Text("0x" + hex.EncodeToString(v)) }

// HashBytes hashes the bytes with xxhash
func HashBytes(v []byte) int64 { return int64(xxhash.Sum64(v)) }

// EqualBytes compares byte slices by content; nil equals empty
func EqualBytes(a, b []byte) bool { return bytes.Equal(a, b) }

// OrdBytes orders byte slices lexically
func OrdBytes(a, b []byte) Ordering { return FromCompare(bytes.Compare(a, b)) }
