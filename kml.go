package osm2street

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ExtraShape is raw shape from external dataset. Points are [lon, lat]
type ExtraShape struct {
	Points     []orb.Point
	Attributes map[string]string
}

// ExtraShapes is collection of external shapes
type ExtraShapes struct {
	Shapes []ExtraShape
}

// LoadKML reads every Placemark of KML file. Placemarks without coordinates are skipped
func LoadKML(fileName string) (*ExtraShapes, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(fileName); err != nil {
		return nil, errors.Wrap(err, "Can't read KML file")
	}
	return parseKML(doc)
}

// ParseKML reads KML from bytes
func ParseKML(data []byte) (*ExtraShapes, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "Can't parse KML")
	}
	return parseKML(doc)
}

func parseKML(doc *etree.Document) (*ExtraShapes, error) {
	shapes := &ExtraShapes{}
	for _, placemark := range doc.FindElements("//Placemark") {
		attributes := make(map[string]string)
		if name := placemark.SelectElement("name"); name != nil {
			attributes["name"] = strings.TrimSpace(name.Text())
		}
		for _, data := range placemark.FindElements(".//SimpleData") {
			attributes[data.SelectAttrValue("name", "")] = strings.TrimSpace(data.Text())
		}
		for _, data := range placemark.FindElements(".//Data") {
			if value := data.SelectElement("value"); value != nil {
				attributes[data.SelectAttrValue("name", "")] = strings.TrimSpace(value.Text())
			}
		}

		var coordinates *etree.Element
		switch {
		case placemark.FindElement(".//Polygon") != nil:
			coordinates = placemark.FindElement(".//Polygon/outerBoundaryIs/LinearRing/coordinates")
			if _, ok := attributes["spatial_type"]; !ok {
				attributes["spatial_type"] = "Polygon"
			}
		default:
			coordinates = placemark.FindElement(".//coordinates")
		}
		if coordinates == nil {
			continue
		}
		pts, err := parseKMLCoordinates(coordinates.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse coordinates of placemark %q", attributes["name"])
		}
		if len(pts) == 0 {
			continue
		}
		shapes.Shapes = append(shapes.Shapes, ExtraShape{Points: pts, Attributes: attributes})
	}
	return shapes, nil
}

// parseKMLCoordinates parses "lon,lat[,alt] lon,lat[,alt] ..."
func parseKMLCoordinates(text string) ([]orb.Point, error) {
	fields := strings.Fields(text)
	pts := make([]orb.Point, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, ",")
		if len(parts) < 2 {
			return nil, errors.Errorf("Bad coordinate tuple %q", field)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, errors.Wrap(err, "Can't parse longitude")
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, errors.Wrap(err, "Can't parse latitude")
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts, nil
}
