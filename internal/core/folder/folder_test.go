package folder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolder_Label(t *testing.T) {
	assert.Equal(t, "Reading", Folder{Name: "Reading"}.Label())
	assert.Equal(t, "📚 Reading", Folder{Name: "Reading", Icon: "📚"}.Label())
}
