package molecule

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

func TestEncoder_SumFormula(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	tests := []struct {
		name  string
		build func(*testing.T) *Graph
		want  string
	}{
		{"hydrogen", hydrogen, "H2"},
		{"water", water, "H2O"},
		{"ammonia", ammonia, "H3N"},
		{"methane", methane, "CH4"},
		{"ethanol", ethanol, "C2H6O"},
		{"cisplatin", cisplatin, "H6Cl2N2Pt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.SumFormula(tt.build(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncoder_SumFormula_SyntheticTable(t *testing.T) {
	table, err := periodic.New([]string{"H", "Zz", "C", "Aa"}, nil, "")
	require.NoError(t, err)
	enc := NewEncoder(table)

	g := mustGraph(t, atomsOf(4, 2, 2, 1, 3, 3, 3))
	got, err := enc.SumFormula(g)
	require.NoError(t, err)
	assert.Equal(t, "C3HAaZz2", got)

	_, err = enc.SumFormula(mustGraph(t, atomsOf(5)))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeLookup))
}

func TestEncoder_SumFormula_Empty(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	empty := mustGraph(t, nil)
	_, err := enc.SumFormula(empty)
	assert.True(t, errors.IsCode(err, errors.CodeInput))
	_, err = enc.Identifier(empty)
	assert.True(t, errors.IsCode(err, errors.CodeInput))
	_, err = enc.Encode(empty)
	assert.True(t, errors.IsCode(err, errors.CodeInput))
}

func TestEncoder_Identifier(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	id, err := enc.Identifier(hydrogen(t))
	require.NoError(t, err)
	assert.Equal(t, hydrogenID, id)
}

func TestEncoder_AuxiliaryEncodings(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	g := mustGraph(t, atomsOf(zH, zH, zO), Bond{0, 2}, Bond{1, 2})

	assert.Equal(t, "(0-2)(1-2)", enc.BondTuples(g))
	assert.Equal(t, "(0:2)(1:2)(2:0,1)", enc.ConnectionTable(g))
	assert.Equal(t, "1001001110", enc.BitString(g))
	assert.Equal(t, "/c/h(0-2)(1-2)", enc.LayeredConnections(g))
	assert.Equal(t, "(1_0:2)(1_1:2)(8_2:1)", enc.NeighborIndexSums(g))

	n := enc.Numerals(g)
	assert.Equal(t, "590", n.Decimal)
	assert.Equal(t, "hex:24e", n.Hex)
	assert.Equal(t, "base32:ie", n.Base32)
}

func TestEncoder_ConnectionTable_IsolatedAtom(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	g := mustGraph(t, atomsOf(zH, zH, zPt), Bond{0, 1})
	assert.Equal(t, "(0:1)(1:0)(2)", enc.ConnectionTable(g))
}

func TestEncoder_LayeredConnections_Heavy(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	res, err := NewEngine().Canonicalize(ethanol(t))
	require.NoError(t, err)
	assert.Equal(t, "/c(6-7)(7-8)/h(0-6)(1-6)(2-6)(3-7)(4-7)(5-8)", enc.LayeredConnections(res.Graph))
}

func TestEncoder_Numerals_MatchBitString(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	g := cisplatin(t)
	bits := enc.BitString(g)
	assert.Len(t, bits, g.Len()*g.Len()+1)

	want, ok := new(big.Int).SetString(bits, 2)
	require.True(t, ok)
	assert.Equal(t, want.String(), enc.Numerals(g).Decimal)
}

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(periodic.Standard())
	res, err := NewEngine().Canonicalize(cisplatin(t))
	require.NoError(t, err)

	out, err := enc.Encode(res.Graph)
	require.NoError(t, err)
	assert.Equal(t, cisplatinID, out.Identifier)
	assert.Equal(t, "H6Cl2N2Pt", out.SumFormula)
	assert.Equal(t, enc.BondTuples(res.Graph), out.BondTuples)
	assert.Equal(t, enc.Numerals(res.Graph), out.Numerals)
	assert.Equal(t, "/c(6-10)(7-10)(8-10)(9-10)/h(0-6)(1-6)(2-6)(3-7)(4-7)(5-7)", out.LayeredConnections)
}
