package famimart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffrey0117/isnowfriend/internal/models"
)

func TestDirectoryFetchedOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[{"pkeynew":"f1","Name":"全家信義店","py_wgs84":"25.0380","px_wgs84":"121.5640"}]`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, 2*time.Second, nil, nil)

	first := c.Directory(context.Background())
	second := c.Directory(context.Background())

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "directory is cached for the process lifetime")
}

func TestDirectoryRetriesAfterFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"pkeynew":"f1","Name":"全家信義店"}]`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, 2*time.Second, nil, nil)

	assert.Empty(t, c.Directory(context.Background()))
	assert.Len(t, c.Directory(context.Background()), 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDirectoryToleratesGarbageCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"pkeynew":"bad","Name":"全家壞資料店","py_wgs84":"N/A","px_wgs84":""},
			{"pkeynew":"good","Name":"全家好店","py_wgs84":"25.0380","px_wgs84":"121.5640"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, 2*time.Second, nil, nil)

	dir := c.Directory(context.Background())
	require.Len(t, dir, 2, "a garbage row must not sink the whole directory")

	_, ok := dir[0].Coordinate()
	assert.False(t, ok)
	loc, ok := dir[1].Coordinate()
	assert.True(t, ok)
	assert.Equal(t, models.Coordinate{Lat: 25.0380, Lng: 121.5640}, loc)
}

func TestSearchByLocationFiltersByRadius(t *testing.T) {
	// one store ~150 m north of center, one ~5.5 km away, one without
	// coordinates at all
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"pkeynew":"near","Name":"全家近店","py_wgs84":"25.0388","px_wgs84":"121.5637"},
			{"pkeynew":"far","Name":"全家遠店","lat":25.0875,"lon":121.5637},
			{"pkeynew":"lost","Name":"全家無座標店"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.URL, 2*time.Second, nil, nil)

	center := models.Coordinate{Lat: 25.0375, Lng: 121.5637}
	got := c.SearchByLocation(context.Background(), center, 1.0)

	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].ID())
}

func TestSearchByKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "信義", r.URL.Query().Get("StoreName"))
		w.Write([]byte(`[{"store_id":"f9","store_name":"全家信義店","addr":"台北市信義區"}]`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", 2*time.Second, nil, nil)

	got := c.SearchByKeyword(context.Background(), "信義")
	require.Len(t, got, 1)
	assert.Equal(t, "f9", got[0].ID())
	assert.Equal(t, "全家信義店", got[0].DisplayName())
	assert.Equal(t, "台北市信義區", got[0].DisplayAddress())
}

func TestSearchByKeywordUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", 2*time.Second, nil, nil)
	assert.Nil(t, c.SearchByKeyword(context.Background(), "信義"))
}

func TestStoreProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathMapProductInfo, r.URL.Path)

		var req productRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "f1", req.StoreID)
		assert.Equal(t, 25.0375, req.Lat)
		assert.Equal(t, 121.5637, req.Lon)

		w.Write([]byte(`[
			{"category_name":"麵包","image_url":"http://img/bread","products":[{"name":"吐司","qty":2}]},
			{"name":"甜點","url":"http://img/dessert","products":[]}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", 2*time.Second, nil, nil)

	got := c.StoreProducts(context.Background(), "f1", models.Coordinate{Lat: 25.0375, Lng: 121.5637})
	require.Len(t, got, 2)
	assert.Equal(t, "麵包", got[0].DisplayName())
	assert.Equal(t, "http://img/bread", got[0].Image())
	assert.Equal(t, "甜點", got[1].DisplayName())
	assert.Equal(t, "http://img/dessert", got[1].Image())
}

func TestCoordinateFieldGenerations(t *testing.T) {
	for name, tc := range map[string]struct {
		raw  string
		want models.Coordinate
		ok   bool
	}{
		"wgs84 strings": {`{"py_wgs84":"25.1","px_wgs84":"121.5"}`, models.Coordinate{Lat: 25.1, Lng: 121.5}, true},
		"lat lon":       {`{"lat":25.2,"lon":121.6}`, models.Coordinate{Lat: 25.2, Lng: 121.6}, true},
		"py px":         {`{"py":"25.3","px":"121.7"}`, models.Coordinate{Lat: 25.3, Lng: 121.7}, true},
		"none":          {`{}`, models.Coordinate{}, false},
	} {
		t.Run(name, func(t *testing.T) {
			var rec StoreRecord
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &rec))
			got, ok := rec.Coordinate()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
