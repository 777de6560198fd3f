package warren

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint32KeyOrdering(t *testing.T) {
	small := Uint32Key(1).Bytes()
	big := Uint32Key(2).Bytes()
	require.Less(t, string(small), string(big))
}

func TestPairKeyBytesConcatenates(t *testing.T) {
	pk := NewPairKey(Uint32Key(7), Uint32Key(3))
	want := append(append([]byte{}, Uint32Key(7).Bytes()...), Uint32Key(3).Bytes()...)
	require.Equal(t, want, pk.Bytes())
}

func TestChildTailFromKeyBytesRoundTrip(t *testing.T) {
	b := childPairKeyBytes(Uint32Key(42).Bytes(), 9)
	tail, ok := childTailFromKeyBytes(b)
	require.True(t, ok)
	require.Equal(t, uint32(9), tail)
}
