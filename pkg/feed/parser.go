// Package feed parses ImmobilienScout24 plot listing exports.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Section types used in the export format.
const (
	sectionTitle         = "TITLE"
	sectionMap           = "MAP"
	sectionTopAttributes = "TOP_ATTRIBUTES"
	sectionAttributeList = "ATTRIBUTE_LIST"
	sectionTextArea      = "TEXT_AREA"
	sectionAgentsInfo    = "AGENTS_INFO"

	attrTypeCheck = "CHECK"
)

// Attribute labels carrying the fields we care about. The export uses both
// label variants depending on the section.
const (
	labelPurchase       = "Purchase:"
	labelPurchasePrice  = "Purchase price"
	labelPlotArea       = "Plot area approx.:"
	labelPlotAreaShort  = "Plot area"
	labelPricePerSqm    = "Price/m²:"
	labelCommercialType = "Commercialisation type:"
	labelShortTerm      = "Short-term constructible:"
	labelDevelopment    = "Development:"
	labelConstructible  = "Constructible type:"
	labelRecommendedUse = "Recommended use:"
	labelDemolition     = "Demolition:"
	labelFreeFrom       = "Free from:"
	labelCommission     = "Commission for the purchaser:"

	descProperty = "Property description"
	descLocation = "Location"
	descNotes    = "Further notes"
)

// Record is one listing as parsed from the export, before normalization
// into the closed scoring domain.
type Record struct {
	ID                string
	Title             string
	Street            string
	FullAddress       string
	District          string
	Latitude          *float64
	Longitude         *float64
	PurchasePrice     *float64
	PlotArea          *float64
	PricePerSqm       *float64
	Commercialisation string
	ShortTerm         string
	Development       string
	Constructible     string
	RecommendedUse    string
	Demolition        string
	FreeFrom          string
	Commission        string
	Description       string
	LocationDesc      string
	FurtherNotes      string
	AgentCompany      string
	AgentName         string
	AgentRating       *float64
}

type item struct {
	Header struct {
		ID string `xml:"id"`
	} `xml:"header"`
	Sections []section `xml:"sections"`
}

type section struct {
	Type         string      `xml:"type"`
	Title        string      `xml:"title"`
	Text         string      `xml:"text"`
	AddressLine1 string      `xml:"addressLine1"`
	AddressLine2 string      `xml:"addressLine2"`
	Location     *location   `xml:"location"`
	Company      string      `xml:"company"`
	Name         string      `xml:"name"`
	Rating       rating      `xml:"rating"`
	Attributes   []attribute `xml:"attributes"`
}

type location struct {
	Lat float64 `xml:"lat"`
	Lng float64 `xml:"lng"`
}

type rating struct {
	Value string `xml:"value"`
}

type attribute struct {
	Label string `xml:"label"`
	Text  string `xml:"text"`
	Type  string `xml:"type"`
}

// ParseFile parses an export file into listing records.
func ParseFile(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening feed file %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse walks the export document and decodes every <item> element,
// wherever it is nested.
func Parse(r io.Reader) ([]*Record, error) {
	dec := xml.NewDecoder(r)

	list := make([]*Record, 0)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading feed: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "item" {
			continue
		}

		var it item
		if err := dec.DecodeElement(&it, &se); err != nil {
			return nil, fmt.Errorf("error decoding feed item: %w", err)
		}

		list = append(list, mapItem(&it))
	}

	return list, nil
}

func mapItem(it *item) *Record {
	r := &Record{ID: it.Header.ID}

	attrs := make(map[string]string)

	for i := range it.Sections {
		s := &it.Sections[i]
		switch s.Type {
		case sectionTitle:
			r.Title = s.Title
		case sectionMap:
			r.Street = s.AddressLine1
			r.FullAddress = s.AddressLine2
			r.District = DistrictFromAddress(s.AddressLine2)
			if s.Location != nil {
				lat, lng := s.Location.Lat, s.Location.Lng
				r.Latitude = &lat
				r.Longitude = &lng
			}
		case sectionTopAttributes, sectionAttributeList:
			for _, a := range s.Attributes {
				if a.Label == "" {
					continue
				}
				switch {
				case a.Text != "":
					attrs[a.Label] = a.Text
				case a.Type == attrTypeCheck:
					attrs[a.Label] = "Yes"
				}
			}
		case sectionTextArea:
			switch s.Title {
			case descProperty:
				r.Description = s.Text
			case descLocation:
				r.LocationDesc = s.Text
			case descNotes:
				r.FurtherNotes = s.Text
			}
		case sectionAgentsInfo:
			r.AgentCompany = s.Company
			r.AgentName = s.Name
			if v, err := strconv.ParseFloat(s.Rating.Value, 64); err == nil {
				r.AgentRating = &v
			}
		}
	}

	r.PurchasePrice = ParsePrice(firstOf(attrs, labelPurchase, labelPurchasePrice))
	r.PlotArea = ParseArea(firstOf(attrs, labelPlotArea, labelPlotAreaShort))
	r.PricePerSqm = ParsePrice(attrs[labelPricePerSqm])
	r.Commercialisation = attrs[labelCommercialType]
	r.ShortTerm = attrs[labelShortTerm]
	r.Development = attrs[labelDevelopment]
	r.Constructible = attrs[labelConstructible]
	r.RecommendedUse = attrs[labelRecommendedUse]
	r.Demolition = attrs[labelDemolition]
	r.FreeFrom = attrs[labelFreeFrom]
	r.Commission = attrs[labelCommission]

	return r
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != "" {
			return v
		}
	}
	return ""
}
