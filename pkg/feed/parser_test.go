package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<export>
  <items>
    <item>
      <header><id>plot-001</id></header>
      <sections>
        <type>TITLE</type>
        <title>Building plot in quiet location</title>
      </sections>
      <sections>
        <type>MAP</type>
        <addressLine1>Musterweg 12</addressLine1>
        <addressLine2>22397 Duvenstedt, Hamburg</addressLine2>
        <location><lat>53.708</lat><lng>10.103</lng></location>
      </sections>
      <sections>
        <type>TOP_ATTRIBUTES</type>
        <attributes><label>Purchase:</label><text>€598,550</text></attributes>
        <attributes><label>Plot area approx.:</label><text>1,142 m²</text></attributes>
        <attributes><label>Price/m²:</label><text>€524</text></attributes>
      </sections>
      <sections>
        <type>ATTRIBUTE_LIST</type>
        <attributes><label>Development:</label><text>Developed</text></attributes>
        <attributes><label>Constructible type:</label><text>Construction plan</text></attributes>
        <attributes><label>Short-term constructible:</label><type>CHECK</type></attributes>
        <attributes><label>Demolition:</label><text>No</text></attributes>
      </sections>
      <sections>
        <type>TEXT_AREA</type>
        <title>Property description</title>
        <text>Sunny plot with old growth trees.</text>
      </sections>
      <sections>
        <type>AGENTS_INFO</type>
        <company>Hanse Immobilien</company>
        <name>K. Petersen</name>
        <rating><value>4.5</value></rating>
      </sections>
    </item>
    <item>
      <header><id>plot-002</id></header>
      <sections>
        <type>TITLE</type>
        <title>Plot without permits</title>
      </sections>
    </item>
  </items>
</export>`

func TestParse(t *testing.T) {
	list, err := Parse(strings.NewReader(testFeed))
	require.NoError(t, err)
	require.Len(t, list, 2)

	r := list[0]
	assert.Equal(t, "plot-001", r.ID)
	assert.Equal(t, "Building plot in quiet location", r.Title)
	assert.Equal(t, "Musterweg 12", r.Street)
	assert.Equal(t, "22397 Duvenstedt, Hamburg", r.FullAddress)
	assert.Equal(t, "Duvenstedt", r.District)

	require.NotNil(t, r.Latitude)
	require.NotNil(t, r.Longitude)
	assert.InDelta(t, 53.708, *r.Latitude, 1e-6)
	assert.InDelta(t, 10.103, *r.Longitude, 1e-6)

	require.NotNil(t, r.PurchasePrice)
	assert.InDelta(t, 598550, *r.PurchasePrice, 1e-9)
	require.NotNil(t, r.PlotArea)
	assert.InDelta(t, 1142, *r.PlotArea, 1e-9)
	require.NotNil(t, r.PricePerSqm)
	assert.InDelta(t, 524, *r.PricePerSqm, 1e-9)

	assert.Equal(t, "Developed", r.Development)
	assert.Equal(t, "Construction plan", r.Constructible)
	assert.Equal(t, "Yes", r.ShortTerm) // CHECK attribute
	assert.Equal(t, "No", r.Demolition)

	assert.Equal(t, "Sunny plot with old growth trees.", r.Description)
	assert.Equal(t, "Hanse Immobilien", r.AgentCompany)
	assert.Equal(t, "K. Petersen", r.AgentName)
	require.NotNil(t, r.AgentRating)
	assert.InDelta(t, 4.5, *r.AgentRating, 1e-9)

	// sparse item still parses with weakest defaults
	r2 := list[1]
	assert.Equal(t, "plot-002", r2.ID)
	assert.Nil(t, r2.PurchasePrice)
	assert.Empty(t, r2.District)
}

func TestParseEmpty(t *testing.T) {
	list, err := Parse(strings.NewReader(`<export></export>`))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader(`<export><item></export>`))
	assert.Error(t, err)
}
