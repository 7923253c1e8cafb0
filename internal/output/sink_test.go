package output

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonSinkBuffersUntilClose(t *testing.T) {
	var buf bytes.Buffer
	s := Json(&buf, "")
	require.NoError(t, s.Write(map[string]any{"a": 1}))
	require.NoError(t, s.Write(map[string]any{"a": 2}))
	assert.Empty(t, buf.String())
	require.NoError(t, s.Close())
	assert.Equal(t, `[{"a":1},{"a":2}]`+"\n", buf.String())
}

func TestJsonlSinkStreamsImmediately(t *testing.T) {
	var buf bytes.Buffer
	s := Jsonl(&buf)
	require.NoError(t, s.Write(map[string]any{"a": 1}))
	assert.Equal(t, `{"a":1}`+"\n", buf.String())
	require.NoError(t, s.Write(map[string]any{"a": 2}))
	assert.Equal(t, `{"a":1}`+"\n"+`{"a":2}`+"\n", buf.String())
	require.NoError(t, s.Close())
}

func TestYamlSink(t *testing.T) {
	var buf bytes.Buffer
	s := Yaml(&buf)
	require.NoError(t, s.Write(map[string]any{"name": "x"}))
	require.NoError(t, s.Close())
	assert.Contains(t, buf.String(), "name: x")
}

func TestMuteSinkDiscards(t *testing.T) {
	s := Mute()
	require.NoError(t, s.Write("anything"))
	require.NoError(t, s.Close())
}

type upperRenderer struct{}

func (upperRenderer) Render(w io.Writer, v any) error {
	_, err := w.Write([]byte(strings.ToUpper(v.(string))))
	return err
}

func TestTemplateSinkDelegatesToRenderer(t *testing.T) {
	var buf bytes.Buffer
	s := Template(&buf, upperRenderer{})
	require.NoError(t, s.Write("hi"))
	assert.Equal(t, "HI", buf.String())
}
