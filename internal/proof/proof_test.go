package proof

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCertificateRoundTripsThroughJSON(t *testing.T) {
	root := NewSplitNode("ReLU(0,1) active/inactive")
	root.AddLemma(ActivationLemma{ConstraintVariables: []int{2, 3}, Phase: "active"})

	leaf := NewLeaf(Contradiction{
		Variable:    4,
		Explanation: Explanation{Coefficients: map[int]float64{0: 1, 1: -1}},
	})
	root.AddChild(leaf)

	cert := NewCertificate(
		[]float64{1, 0, -1, 0, 1, 0},
		2, 3,
		[]float64{0, 0, 0},
		[]float64{1, 1, 1},
		root,
	)

	data, err := cert.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, cert.Rows, decoded.Rows)
	require.Equal(t, cert.Cols, decoded.Cols)
	require.Equal(t, cert.ConstraintMatrix, decoded.ConstraintMatrix)
	require.Equal(t, cert.GroundLowerBounds, decoded.GroundLowerBounds)
	require.Len(t, decoded.Root.Children, 1)
	require.Equal(t, 4, decoded.Root.Children[0].Leaf.Variable)
	require.Equal(t, -1.0, decoded.Root.Children[0].Leaf.Explanation.Coefficients[1])
	require.Len(t, decoded.Root.Lemmas, 1)
	require.Equal(t, "active", decoded.Root.Lemmas[0].Phase)
}
