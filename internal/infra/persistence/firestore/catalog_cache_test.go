package firestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheDocID(t *testing.T) {
	// Raw cache keys carry slashes and query strings, which Firestore
	// rejects in document IDs.
	id := cacheDocID("/v1/products/search?q=kush&limit=20")
	assert.Len(t, id, 40)
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "?")

	assert.Equal(t, id, cacheDocID("/v1/products/search?q=kush&limit=20"))
	assert.NotEqual(t, id, cacheDocID("/v1/retailers/r-100/menu"))
}
