package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string
	Count int
}

func TestBinaryRoundTrip(t *testing.T) {
	w := widget{Name: "bolt", Count: 3}
	data, err := EncodeBinary(w)
	require.NoError(t, err)

	var out widget
	require.NoError(t, DecodeBinary(data, &out))
	require.Equal(t, w, out)
}

func TestTextAllRoundTrip(t *testing.T) {
	records := []widget{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	var buf bytes.Buffer
	require.NoError(t, WriteTextAll(&buf, records))

	out, err := ReadTextAll[widget](&buf)
	require.NoError(t, err)
	require.Equal(t, records, out)
}

func TestTextAllSkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("{\"Name\":\"a\",\"Count\":1}\n\n{\"Name\":\"b\",\"Count\":2}\n")

	out, err := ReadTextAll[widget](&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
}
