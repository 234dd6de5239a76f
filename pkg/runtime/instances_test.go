package runtime

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrdering(t *testing.T) {
	assert.Equal(t, "LT", LT.String())
	assert.Equal(t, "EQ", EQ.String())
	assert.Equal(t, "GT", GT.String())
	assert.Equal(t, GT, LT.Reverse())
	assert.Equal(t, EQ, EQ.Reverse())
	assert.Equal(t, LT, FromCompare(-7))
	assert.Equal(t, GT, FromCompare(3))
	assert.Equal(t, EQ, FromCompare(0))
}

func TestIntInstances(t *testing.T) {
	assert.Equal(t, "-42", ShowInt(-42).String())
	assert.Equal(t, int64(5), HashInt(5))
	assert.True(t, EqualInt(3, 3))
	assert.Equal(t, LT, OrdInt(3, 4))
	assert.Equal(t, GT, OrdInt(math.MaxInt64, math.MinInt64))
}

func TestStringInstances(t *testing.T) {
	assert.Equal(t, `"a\"b"`, ShowString(`a"b`).String())
	assert.Equal(t, HashString("hello"), HashString("hello"))
	assert.NotEqual(t, HashString("hello"), HashString("world"))
	assert.Equal(t, LT, OrdString("abc", "abd"))
	assert.True(t, EqualString("", ""))
}

func TestBoolInstances(t *testing.T) {
	assert.Equal(t, "true", ShowBool(true).String())
	assert.Equal(t, int64(1), HashBool(true))
	assert.Equal(t, int64(0), HashBool(false))
	assert.Equal(t, LT, OrdBool(false, true))
	assert.Equal(t, GT, OrdBool(true, false))
	assert.Equal(t, EQ, OrdBool(true, true))
}

func TestFloatInstances_ConsistentWithOrder(t *testing.T) {
	nan := math.NaN()
	negZero := math.Copysign(0, -1)

	values := []float64{nan, math.Inf(-1), -1.5, negZero, 0, 2.25, math.Inf(1)}
	for _, a := range values {
		for _, b := range values {
			eq := EqualFloat(a, b)
			assert.Equal(t, eq, OrdFloat(a, b) == EQ, "Equal/Ord disagree for %v, %v", a, b)
			if eq {
				assert.Equal(t, HashFloat(a), HashFloat(b), "equal floats %v, %v hash differently", a, b)
			}
		}
	}

	assert.Equal(t, "2.25", ShowFloat(2.25).String())
	assert.Equal(t, LT, OrdFloat(nan, math.Inf(-1)))
}

func TestUUIDInstances(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", ShowUUID(a).String())
	assert.Equal(t, LT, OrdUUID(a, b))
	assert.True(t, EqualUUID(a, a))
	assert.Equal(t, HashUUID(a), HashUUID(uuid.MustParse(a.String())))
}

func TestTimeInstances(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sameInstant := utc.In(time.FixedZone("plus2", 2*3600))

	assert.True(t, EqualTime(utc, sameInstant))
	assert.Equal(t, HashTime(utc), HashTime(sameInstant))
	assert.Equal(t, EQ, OrdTime(utc, sameInstant))
	assert.Equal(t, LT, OrdTime(utc, utc.Add(time.Second)))
	assert.Equal(t, "2024-03-01T12:00:00Z", ShowTime(utc).String())
}

func TestBytesInstances(t *testing.T) {
	assert.Equal(t, "0x0aff", ShowBytes([]byte{0x0a, 0xff}).String())
	assert.True(t, EqualBytes(nil, []byte{}))
	assert.Equal(t, HashBytes(nil), HashBytes([]byte{}))
	assert.Equal(t, LT, OrdBytes([]byte{1}, []byte{1, 0}))
}
