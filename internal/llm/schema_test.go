package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateListingSchema(t *testing.T) {
	schema := BuildListingJSONSchema(nil)

	good := []byte(`{"title":"Cobertura","type":"Penthouse","price":950000,"address":"Av. Atlântica 100","area":182.5,"bedrooms":3,"bathrooms":2,"description":"vista mar","status":"AVAILABLE"}`)
	require.NoError(t, ValidateJSONAgainstSchema(schema, good))

	partial := []byte(`{"title":"Casa"}`)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, partial))

	wrongType := []byte(`{"price":"950000"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, wrongType))

	unknownKey := []byte(`{"pool":true}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, unknownKey))
}

func TestValidateListingSchemaEnum(t *testing.T) {
	schema := BuildListingJSONSchema([]string{"Apartment", "House"})
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"type":"House"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"type":"Castle"}`)))
}
