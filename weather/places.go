package weather

// DefaultPlaceNames maps provider place names to the localized administrative
// names shown to users. Names missing from the table are shown as returned.
var DefaultPlaceNames = PlaceNames{
	"Taipei":       "臺北市",
	"New Taipei":   "新北市",
	"Banqiao":      "新北市",
	"Taoyuan":      "桃園市",
	"Taoyuan City": "桃園市",
	"Taichung":     "臺中市",
	"Tainan":       "臺南市",
	"Tainan City":  "臺南市",
	"Kaohsiung":    "高雄市",
	"Keelung":      "基隆市",
	"Hsinchu":      "新竹市",
}

// PlaceNames translates provider place names through a fixed table.
type PlaceNames map[string]string

// Localize returns the table entry for raw, or raw itself when there is none.
func (p PlaceNames) Localize(raw string) string {
	if name, ok := p[raw]; ok {
		return name
	}
	return raw
}

// Merge returns a new table with overrides layered on top of p.
func (p PlaceNames) Merge(overrides map[string]string) PlaceNames {
	out := make(PlaceNames, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
