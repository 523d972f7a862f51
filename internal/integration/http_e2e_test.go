//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "hotel_pipeline/internal/adapters/http_server"
	redisad "hotel_pipeline/internal/adapters/redis"
	"hotel_pipeline/internal/app"
	"hotel_pipeline/internal/domain"
	mysqlrepo "hotel_pipeline/internal/storage/mysql"
)

// ---------- helpers ----------
func pint64(i int64) *int64 { return &i }
func pfloat(f float64) *float64 { return &f }

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotels?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	pool.MaxWait = 2 * time.Minute
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_LoadThenQuery(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	if _, err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	repo := mysqlrepo.New(db)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	loader := app.NewLoader(repo, cache)
	sum := loader.Load(ctx, app.LoadInput{
		Chains: []domain.Chain{{ID: 7, Name: "Seven Resorts"}},
		Hotels: []domain.Hotel{{ID: 22002, Name: "Seaside", ChainID: pint64(7), Latitude: pfloat(41), Longitude: pfloat(29)}},
		Images: []domain.Image{{ID: 22002001, HotelID: 22002, URL: "images/7/22002/22002001.jpg"}},
		Tags: []domain.ImageTag{
			{ImageID: 22002001, Name: "infinity pool", Confidence: 0.8},
			{ImageID: 22002001, Name: "spa", Confidence: 0.2},
		},
	})
	if got := sum.Total(); got.Inserted != 5 || got.Failed != 0 {
		t.Fatalf("load summary: %+v", got)
	}
	from, to, _ := app.ParseDateRange("2025-04-01", "2025-04-30")
	rows := app.NewAvailabilityGenerator(42, "EUR").Generate([]int64{22002}, from, to)
	if c := loader.LoadAvailability(ctx, rows); c.Inserted != 30 {
		t.Fatalf("availability: %+v", c)
	}

	srv := server.New(server.Options{})
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(repo, cache, nil, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var hv domain.HotelView
	getJSON(t, fmt.Sprintf("%s/v1/hotels/22002", ts.URL), &hv)
	if hv.Name != "Seaside" || hv.ChainName == nil || *hv.ChainName != "Seven Resorts" {
		t.Fatalf("unexpected hotel: %+v", hv)
	}
	if len(hv.Images) != 1 || len(hv.Images[0].Tags) != 2 || hv.Images[0].Tags[0].Name != "infinity pool" {
		t.Fatalf("unexpected images: %+v", hv.Images)
	}
	if !mr.Exists("hotelpipe:hotel:22002") {
		t.Fatalf("hotel view not cached")
	}

	// a later load touching the hotel drops the cached view
	loader.Load(ctx, app.LoadInput{Tags: []domain.ImageTag{{ImageID: 22002001, Name: "bar", Confidence: 0.1}}})
	if mr.Exists("hotelpipe:hotel:22002") {
		t.Fatalf("hotel view still cached after tag insert")
	}

	var hits []domain.ImageHit
	getJSON(t, ts.URL+"/v1/images?tag=POOL&start_date=2025-04-01&end_date=2025-04-30", &hits)
	if len(hits) != 1 || hits[0].HotelID != 22002 || hits[0].AvgPrice <= 0 {
		t.Fatalf("unexpected search hits: %+v", hits)
	}
	if len(hits[0].Tags) != 1 || hits[0].Tags[0].Name != "infinity pool" {
		t.Fatalf("search hit should carry only matching tags: %+v", hits[0].Tags)
	}

	var none []domain.ImageHit
	getJSON(t, ts.URL+"/v1/images", &none)
	if none == nil || len(none) != 0 {
		t.Fatalf("no tag should yield an empty array, got %+v", none)
	}

	var avail []domain.AvailabilityPrice
	getJSON(t, ts.URL+"/v1/hotels/22002/availability?from=2025-04-10&to=2025-04-12", &avail)
	if len(avail) != 3 {
		t.Fatalf("availability rows: %d", len(avail))
	}

	res, err := http.Get(ts.URL + "/v1/hotels/999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown hotel status %d", res.StatusCode)
	}
}
