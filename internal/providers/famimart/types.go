package famimart

import "github.com/Jeffrey0117/isnowfriend/internal/models"

// StoreRecord is a raw FamilyMart store entry. The static dataset and the
// live keyword endpoint use different field name generations, so every
// spelling is kept and accessors pick the first populated one.
type StoreRecord struct {
	PKey      string `json:"pkey"`
	PKeyNew   string `json:"pkeynew"`
	StoreID   string `json:"store_id"`
	Name      string `json:"Name"`
	StoreName string `json:"store_name"`
	NameUC    string `json:"NAME"`
	Addr      string `json:"addr"`
	Address   string `json:"address"`
	Tel       string `json:"Tel"`
	Phone     string `json:"phone"`

	PyWGS84 models.FlexFloat `json:"py_wgs84"`
	PxWGS84 models.FlexFloat `json:"px_wgs84"`
	Lat     models.FlexFloat `json:"lat"`
	Lon     models.FlexFloat `json:"lon"`
	Py      models.FlexFloat `json:"py"`
	Px      models.FlexFloat `json:"px"`
}

// ID prefers the newest key generation.
func (s StoreRecord) ID() string {
	return firstNonEmpty(s.PKeyNew, s.StoreID, s.PKey)
}

func (s StoreRecord) DisplayName() string {
	return firstNonEmpty(s.Name, s.StoreName, s.NameUC)
}

func (s StoreRecord) DisplayAddress() string {
	return firstNonEmpty(s.Addr, s.Address)
}

func (s StoreRecord) DisplayPhone() string {
	return firstNonEmpty(s.Tel, s.Phone)
}

// Coordinate resolves the record position across the three coordinate
// field generations (py_wgs84/px_wgs84, lat/lon, py/px). False when no
// generation is populated.
func (s StoreRecord) Coordinate() (models.Coordinate, bool) {
	for _, c := range []models.Coordinate{
		{Lat: s.PyWGS84.Float(), Lng: s.PxWGS84.Float()},
		{Lat: s.Lat.Float(), Lng: s.Lon.Float()},
		{Lat: s.Py.Float(), Lng: s.Px.Float()},
	} {
		if !c.IsZero() {
			return c, true
		}
	}
	return models.Coordinate{}, false
}

type productRequest struct {
	StoreID string  `json:"store_id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// ProductCategory is one category of the live product endpoint; field
// names vary across API versions here as well.
type ProductCategory struct {
	CategoryName string    `json:"category_name"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	URL          string    `json:"url"`
	Products     []Product `json:"products"`
}

func (p ProductCategory) DisplayName() string {
	return firstNonEmpty(p.CategoryName, p.Name)
}

func (p ProductCategory) Image() string {
	return firstNonEmpty(p.ImageURL, p.URL)
}

type Product struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
