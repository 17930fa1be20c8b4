//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_listings/internal/domain"
	mysqlrepo "hotel_listings/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	// package dir is internal/storage/mysql
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotels")

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

	applyMigrations(t, db)
	return db
}

func fields(name, city string, price float64) domain.HotelFields {
	return domain.HotelFields{
		Name:          name,
		Address1:      "1 Rue de Rivoli",
		Zipcode:       "75001",
		City:          city,
		Country:       "France",
		Lat:           48.8566,
		Lng:           2.3522,
		Description:   "A quiet place near the river.",
		MaxCapacity:   40,
		PricePerNight: price,
	}
}

// ---------- the test ----------
func TestRepo_MySQL_HotelLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: hotel with a two picture gallery
	f := fields("Hotel X", "Paris", 100)
	f.Address2 = pstr("2nd floor")
	id, err := repo.CreateHotel(ctx, f, []domain.NewPicture{
		{Filepath: "hotels/a.png", Filesize: 10, Position: 0},
		{Filepath: "hotels/b.png", Filesize: 20, Position: 1},
	})
	if err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}

	h, err := repo.GetHotel(ctx, id)
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if h.Name != "Hotel X" || h.Address2 == nil || *h.Address2 != "2nd floor" || h.PricePerNight != 100 {
		t.Fatalf("unexpected hotel: %+v", h)
	}
	if len(h.Pictures) != 2 || h.Pictures[0].Filepath != "hotels/a.png" {
		t.Fatalf("unexpected gallery: %+v", h.Pictures)
	}

	// Partial update: only address2 (to null) and price
	if err := repo.UpdateHotel(ctx, id, domain.HotelInput{
		Address2:      domain.Null[string](),
		PricePerNight: domain.Some(120.5),
	}); err != nil {
		t.Fatalf("UpdateHotel: %v", err)
	}

	// Gallery edits
	a, b := h.Pictures[0].ID, h.Pictures[1].ID
	if err := repo.SetPicturePosition(ctx, id, a, 5); err != nil {
		t.Fatalf("SetPicturePosition: %v", err)
	}
	if err := repo.DeletePicture(ctx, id, b); err != nil {
		t.Fatalf("DeletePicture: %v", err)
	}
	if err := repo.DeletePicture(ctx, id, b); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second DeletePicture: want ErrNotFound, got %v", err)
	}
	if _, err := repo.AddPicture(ctx, id, domain.NewPicture{Filepath: "hotels/c.png", Filesize: 30, Position: 1}); err != nil {
		t.Fatalf("AddPicture: %v", err)
	}

	h, err = repo.GetHotel(ctx, id)
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if h.Name != "Hotel X" || h.Address2 != nil || h.PricePerNight != 120.5 {
		t.Fatalf("partial update not applied: %+v", h)
	}
	if len(h.Pictures) != 2 || h.Pictures[0].Filepath != "hotels/c.png" || h.Pictures[1].ID != a {
		t.Fatalf("unexpected gallery order: %+v", h.Pictures)
	}

	// Delete cascades to the gallery
	if err := repo.DeleteHotel(ctx, id); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}
	if _, err := repo.GetHotel(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetHotel after delete: want ErrNotFound, got %v", err)
	}
	if err := repo.DeleteHotel(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DeleteHotel twice: want ErrNotFound, got %v", err)
	}
	pics, err := repo.ListPictures(ctx, id)
	if err != nil || len(pics) != 0 {
		t.Fatalf("pictures left behind: %v %+v", err, pics)
	}
}

func TestRepo_MySQL_ListFilterSortPaginate(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	for _, f := range []domain.HotelFields{
		fields("Grand Paris", "Paris", 300),
		fields("Petit Paris", "paris", 80),
		fields("Lyon Centre", "Lyon", 120),
		fields("Paris Gare", "Paris", 150),
	} {
		if _, err := repo.CreateHotel(ctx, f, nil); err != nil {
			t.Fatalf("CreateHotel: %v", err)
		}
	}

	// city is exact and case-sensitive
	items, total, err := repo.ListHotels(ctx, domain.HotelsQuery{City: pstr("Paris"), Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("city filter: total=%d items=%d", total, len(items))
	}

	// name is a case-insensitive substring, sorted by price desc
	items, total, err = repo.ListHotels(ctx, domain.HotelsQuery{
		Name: pstr("PARIS"), Sort: domain.SortPrice, Desc: true, Page: 1, PerPage: 2,
	})
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].Name != "Grand Paris" || items[1].Name != "Paris Gare" {
		t.Fatalf("name filter/sort: total=%d items=%+v", total, items)
	}

	// past the last page
	items, total, err = repo.ListHotels(ctx, domain.HotelsQuery{Page: 9, PerPage: 2})
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if total != 4 || len(items) != 0 {
		t.Fatalf("beyond last page: total=%d items=%d", total, len(items))
	}

	// LIKE wildcards in the filter are literal
	_, total, err = repo.ListHotels(ctx, domain.HotelsQuery{Name: pstr("%"), Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if total != 0 {
		t.Fatalf("escaped wildcard matched %d hotels", total)
	}
}
