package sensitive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWord(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("第一夫人\n协警\n"), 0o644))

	w, err := NewWord(dict, []string{" casino ", ""})
	require.NoError(t, err)

	pass, str := w.Validate("第一夫人")
	assert.Equal(t, false, pass)
	assert.Equal(t, "第一夫人", str)

	str = w.Replace("你是协警", '！')
	assert.Equal(t, "你是！！", str)

	pass, str = w.Validate("online casino tonight")
	assert.False(t, pass)
	assert.Equal(t, "casino", str)

	pass, _ = w.Validate("Hello, World!")
	assert.True(t, pass)
}

func TestNewWordMissingDict(t *testing.T) {
	_, err := NewWord(filepath.Join(t.TempDir(), "nope.txt"), nil)
	assert.Error(t, err)
}
