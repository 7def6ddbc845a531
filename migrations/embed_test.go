package migrations_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/migrations"
)

func TestSchema_UpSectionsOnly(t *testing.T) {
	schema, err := migrations.Schema()

	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE master_entities")
	assert.Contains(t, schema, "CREATE TABLE tours")
	assert.NotContains(t, schema, "DROP TABLE")
	assert.NotContains(t, schema, "+goose")
	assert.Less(t, strings.Index(schema, "master_entities"), strings.Index(schema, "CREATE TABLE tours"))
}
