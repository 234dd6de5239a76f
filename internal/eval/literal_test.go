package eval

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derive/internal/compiler/parser"
)

const literalSchema = `adts:
  - name: T
    constructors:
      - name: A
        fields: [{name: x, type: Int}]
      - name: B
        fields: [{name: y, type: Int}, {name: z, type: Int}]
      - name: C
  - name: Record
    constructors:
      - name: R
        fields:
          - {name: name, type: String}
          - {name: score, type: Float}
          - {name: active, type: Bool}
          - {name: id, type: UUID}
          - {name: at, type: Time}
          - {name: raw, type: Bytes}
          - {name: inner, type: "?T"}
`

func TestParseValue(t *testing.T) {
	schema, errs := parser.Parse([]byte(literalSchema))
	require.Empty(t, errs)

	v, err := ParseValue(schema, "B(2, -3)")
	require.NoError(t, err)
	assert.Equal(t, Value{ADT: "T", Tag: 1, Fields: []any{int64(2), int64(-3)}}, v)

	v, err = ParseValue(schema, "C")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Tag)

	v, err = ParseValue(schema, "C()")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Tag)

	v, err = ParseValue(schema, `R("ann", 1.5, true, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "2024-03-01T10:00:00Z", "0xcafe", A(7))`)
	require.NoError(t, err)
	assert.Equal(t, "Record", v.ADT)
	require.Len(t, v.Fields, 7)
	assert.Equal(t, "ann", v.Fields[0])
	assert.Equal(t, 1.5, v.Fields[1])
	assert.Equal(t, true, v.Fields[2])
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), v.Fields[3])
	assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Equal(v.Fields[4].(time.Time)))
	assert.Equal(t, []byte{0xca, 0xfe}, v.Fields[5])
	assert.Equal(t, Value{ADT: "T", Tag: 0, Fields: []any{int64(7)}}, v.Fields[6])
}

func TestParseValue_Errors(t *testing.T) {
	schema, errs := parser.Parse([]byte(literalSchema))
	require.Empty(t, errs)

	tests := []struct {
		src string
		msg string
	}{
		{"", "not a constructor"},
		{"Z(1)", "not a constructor"},
		{"A", "takes 1 fields"},
		{"A(1, 2)", "takes 1 fields"},
		{"A(1) junk", "unexpected"},
		{`A("one")`, "expected a number"},
		{"A(1.5)", "expected a number"},
		{"B(1 2)", "expected"},
		{`R("n", 1, maybe, "x", "x", "x", C)`, "expected true or false"},
		{`R("n", 1, true, "not-a-uuid", "x", "x", C)`, "invalid UUID"},
		{`R("n", 1, true, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "yesterday", "x", C)`, "invalid Time"},
		{`R("n", 1, true, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "2024-03-01T10:00:00Z", "zz", C)`, "invalid Bytes"},
		{`R("n", 1, true, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "2024-03-01T10:00:00Z", "00", R)`, "not a constructor of T"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseValue(schema, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseValue_RoundTripsThroughShow(t *testing.T) {
	_, env := setup(t, literalSchema)
	schema, _ := parser.Parse([]byte(literalSchema))

	for _, src := range []string{"A(5)", "B(2, 3)", "C()"} {
		v, err := ParseValue(schema, src)
		require.NoError(t, err)
		assert.Equal(t, src, show(t, env, v))
	}
}
