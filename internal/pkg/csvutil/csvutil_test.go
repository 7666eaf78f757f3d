package csvutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterQuotesEveryField(t *testing.T) {
	var w Writer
	w.WriteRow([]string{"a", "", "c,d"})
	assert.Equal(t, `"a","","c,d"`, w.String())
}

func TestWriterEscapesQuotes(t *testing.T) {
	var w Writer
	w.WriteRow([]string{`say "hi"`})
	assert.Equal(t, `"say ""hi"""`, w.String())
}

func TestWriterJoinsRowsWithNewline(t *testing.T) {
	var w Writer
	w.WriteRow([]string{"h1", "h2"})
	w.WriteRow([]string{"v1", "v2"})
	assert.Equal(t, "\"h1\",\"h2\"\n\"v1\",\"v2\"", w.String())
}

func TestWriterEmpty(t *testing.T) {
	var w Writer
	assert.Equal(t, "", w.String())
}
