package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, 8, cfg.Server.BatchWorkers)
	assert.Equal(t, "dict", cfg.Parser.Segmenter)
	assert.Equal(t, "created_at", cfg.Translate.TimeField)
	assert.Equal(t, 10, cfg.Translate.DefaultSize)
	assert.Equal(t, 1000, cfg.Translate.MaxSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("NLQ_SERVER_PORT", "9090")
	t.Setenv("NLQ_LOG_JSON", "true")
	t.Setenv("NLQ_PARSER_SEGMENTER", "whitespace")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "whitespace", cfg.Parser.Segmenter)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nlq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  cache_ttl: 30s
translate:
  default_index: users
parser:
  stop_words: [请问, 麻烦]
  keywords:
    operator:
      超出: GT
    logic:
      以及: AND
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "users", cfg.Translate.DefaultIndex)
	assert.Equal(t, []string{"请问", "麻烦"}, cfg.Parser.StopWords)
	assert.Equal(t, map[string]string{"超出": "GT"}, cfg.Parser.Keywords.Operator)

	ov, err := cfg.Parser.LoadKeywords()
	require.NoError(t, err)
	assert.Equal(t, "AND", ov.Logic["以及"])
}

func TestLoad_KeywordsFile(t *testing.T) {
	dir := t.TempDir()
	kw := filepath.Join(dir, "keywords.cue")
	require.NoError(t, os.WriteFile(kw, []byte(`
operator: {
	"超出": "GT"
	"不及": "LT"
}
`), 0o644))

	p := ParserConfig{KeywordsFile: kw}
	p.Keywords.Operator = map[string]string{"不及": "LTE"}
	ov, err := p.LoadKeywords()
	require.NoError(t, err)
	assert.Equal(t, "GT", ov.Operator["超出"])
	// Inline overrides win over the file.
	assert.Equal(t, "LTE", ov.Operator["不及"])

	_, err = ParserConfig{KeywordsFile: filepath.Join(dir, "missing.cue")}.LoadKeywords()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("NLQ_PARSER_SEGMENTER", "jieba")
	_, err := Load("")
	assert.ErrorContains(t, err, "parser.segmenter")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
